// Package plant models the steady-state thermal and water balance of a
// liquid/air-cooled data-center cooling plant: two thermal loads (a
// liquid-cooled compute cluster and an air-cooled building load), a
// water-cooled chiller, and an evaporative cooling tower connected by
// three closed fluid loops.
//
// The chiller uses a two-stage curve-fit performance model (CapFT, EIRFT,
// EIRFPLR) correcting rated capacity and efficiency for the actual chilled
// and condenser water temperatures and the part-load ratio. The cooling
// tower uses a fixed approach temperature and an energy-based evaporation
// model with drift and blowdown losses.
//
// SystemSolver couples the components across the condenser-water loop with
// a bounded fixed-point iteration: load heat flows feed the chiller, the
// chiller's condenser heat feeds the tower, and the tower's outlet
// temperature feeds back into the chiller until the ten loop temperature
// state points stop changing. Non-convergence is a reported outcome
// (Result.Converged), not an error.
//
// Every solve is a pure deterministic map from (configuration, state) to
// the next state: no randomness, no clock, no I/O. A solver instance owns
// its state points exclusively, so independent instances may run
// concurrently without locks.
package plant
