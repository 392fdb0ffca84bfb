package plant

import (
	"fmt"
	"math"
)

// StatePoints are the ten loop temperatures (C) the solver iterates on,
// numbered as in the plant schematic: T1-T4 chilled water, T5-T7 compute
// coolant, T8-T10 condenser water.
type StatePoints struct {
	CHWSupply       float64 // T1, chiller evaporator outlet
	AfterBuildingHX float64 // T2, after the building air handler
	AfterComputeHX  float64 // T3, after the compute heat exchanger
	CHWReturn       float64 // T4, chiller evaporator inlet
	GPUSupply       float64 // T5, coolant to the compute cluster
	GPUReturn       float64 // T6, coolant from the compute cluster
	GPUToHX         float64 // T7, coolant entering the exchanger (= T6)
	CWFromTower     float64 // T8, tower outlet, the coupling variable
	CWFromChiller   float64 // T9, chiller condenser outlet
	CWToChiller     float64 // T10, tower outlet as seen by the chiller (= T8)
}

// maxDelta returns the largest absolute change across all state points.
func (s StatePoints) maxDelta(prev StatePoints) float64 {
	pairs := [...][2]float64{
		{s.CHWSupply, prev.CHWSupply},
		{s.AfterBuildingHX, prev.AfterBuildingHX},
		{s.AfterComputeHX, prev.AfterComputeHX},
		{s.CHWReturn, prev.CHWReturn},
		{s.GPUSupply, prev.GPUSupply},
		{s.GPUReturn, prev.GPUReturn},
		{s.GPUToHX, prev.GPUToHX},
		{s.CWFromTower, prev.CWFromTower},
		{s.CWFromChiller, prev.CWFromChiller},
		{s.CWToChiller, prev.CWToChiller},
	}
	var worst float64
	for _, p := range pairs {
		if d := math.Abs(p[0] - p[1]); d > worst {
			worst = d
		}
	}
	return worst
}

// FlowRates are the fixed design mass flows (kg/s) of the three water
// loops plus the building air stream, derived once at construction from
// the design heat loads and temperature deltas. They are parameters of a
// configuration, not solved variables.
type FlowRates struct {
	GPU float64
	CHW float64
	CW  float64
	Air float64
}

// Flags are the per-solve constraint checks. They are data for the caller
// to act on, never silently corrected.
type Flags struct {
	GPUTempOK         bool
	BuildingTempOK    bool
	TowerRangeOK      bool
	ChillerOverloaded bool
}

// Result is the immutable outcome of one solve.
type Result struct {
	// Convergence diagnostics. A non-converged result carries the last
	// iterate and the residual that remained; accepting it is the
	// caller's decision.
	Converged  bool
	Iterations int
	ResidualC  float64

	// Inputs echoed back
	Utilization float64
	TWBC        float64

	// Heat and power flows (MW)
	PITMW       float64
	QGPUMW      float64
	QBuildingMW float64
	QEvapMW     float64
	QCondMW     float64
	WCompMW     float64
	WPumpsMW    float64
	WFansMW     float64
	WCoolingMW  float64

	// Performance metrics
	COP float64
	PLR float64
	PUE float64
	WUE float64 // L/kWh

	// Water balance (kg/s)
	MEvap     float64
	MDrift    float64
	MBlowdown float64
	MMakeup   float64
	COC       float64

	// Loop exit temperatures and the converged state-point set
	TGPUOutC float64
	TAirOutC float64
	States   StatePoints

	Flags Flags

	EnergyBalanceErrPct float64
}

// Solver iteration states.
type solveState int

const (
	stateInitialized solveState = iota
	stateIterating
	stateConverged
	stateNotConverged
)

// SystemSolver owns one configuration, the three component models, and
// the mutable state-point set it iterates on. State points persist across
// Solve calls on the same instance, so a repeated solve at the same
// operating point warm-starts from the previous fixed point. Instances
// are not safe for concurrent use; distinct instances are.
type SystemSolver struct {
	cfg      *Config
	gpu      *ThermalLoad
	building *ThermalLoad
	chiller  *ChillerModel
	tower    *CoolingTowerModel
	flows    FlowRates
	states   StatePoints
}

// NewSystemSolver validates cfg (after merging defaults over unset
// fields), builds the component models, derives the design flow rates,
// and seeds the state points with design-condition guesses.
func NewSystemSolver(cfg *Config, curves CurveSet) (*SystemSolver, error) {
	cfg = cfg.withDefaults()
	if curves == nil {
		curves = DefaultCurves()
	}

	gpu, err := NewGPULoad(cfg.GPUModel, cfg.TDPPerGPUW, cfg.GPULoadMW, cfg.GPUMaxTempC, cfg.CpWater)
	if err != nil {
		return nil, err
	}
	building, err := NewThermalLoad("building", cfg.BuildingLoadMW, cfg.BuildingMaxTempC, cfg.CpAir)
	if err != nil {
		return nil, err
	}
	chiller, err := NewChillerModel(cfg.ChillerRatedCapacityMW, cfg.ChillerRatedCOP, cfg.TCHWSupplyC, curves)
	if err != nil {
		return nil, err
	}
	tower, err := NewCoolingTowerModel(cfg.CoolingTowerApproachC, cfg.COC, cfg.DriftFraction,
		cfg.FanPowerFraction, cfg.LatentHeat)
	if err != nil {
		return nil, err
	}
	if cfg.MaxSilicaPPM > 0 {
		tower, err = tower.WithSilicaLimits(cfg.MakeupSilicaPPM, cfg.MaxSilicaPPM)
		if err != nil {
			return nil, err
		}
	}

	s := &SystemSolver{
		cfg:      cfg,
		gpu:      gpu,
		building: building,
		chiller:  chiller,
		tower:    tower,
	}
	s.flows = s.designFlows()
	s.states = s.initialStates()
	return s, nil
}

// designFlows sizes the loop mass flows from Q = m cp dT at the design
// temperature deltas. The condenser-water loop is sized for the design
// evaporator load times the condenser sizing factor.
func (s *SystemSolver) designFlows() FlowRates {
	cfg := s.cfg
	qGPU := cfg.GPULoadMW * 1e6
	qEvap := (cfg.GPULoadMW + cfg.BuildingLoadMW) * 1e6
	qBuilding := cfg.BuildingLoadMW * 1e6
	return FlowRates{
		GPU: qGPU / (cfg.CpWater * cfg.DesignDeltaGPUC),
		CHW: qEvap / (cfg.CpWater * cfg.DesignDeltaCHWC),
		CW:  qEvap * cfg.CondenserSizingFactor / (cfg.CpWater * cfg.DesignDeltaCWC),
		Air: qBuilding / (cfg.CpAir * cfg.DesignDeltaAirC),
	}
}

// initialStates seeds the iteration. The condenser-water guesses start at
// the design-ambient tower outlet; the rest are design-condition guesses
// refined in the first iteration.
func (s *SystemSolver) initialStates() StatePoints {
	cfg := s.cfg
	tTower := cfg.TWBAmbientC + cfg.CoolingTowerApproachC
	return StatePoints{
		CHWSupply:       cfg.TCHWSupplyC,
		AfterBuildingHX: 12.0,
		AfterComputeHX:  15.0,
		CHWReturn:       15.0,
		GPUSupply:       cfg.TGPUInC,
		GPUReturn:       38.0,
		GPUToHX:         38.0,
		CWFromTower:     tTower,
		CWFromChiller:   35.0,
		CWToChiller:     tTower,
	}
}

// Solve iterates the coupled system to a steady state for the given IT
// utilization and ambient wet-bulb temperature (C).
//
// Each iteration recomputes every state point from the current iteration's
// heat flows and the fixed design flow rates; the tower outlet (T8) is the
// single coupling variable carried between iterations. Iteration stops
// when the largest state-point change falls below the configured tolerance
// (Converged) or the iteration budget is exhausted (NotConverged, reported
// in the Result rather than raised).
func (s *SystemSolver) Solve(utilization, tWB float64) (*Result, error) {
	if tWB < -20 || tWB >= 50 {
		return nil, fmt.Errorf("%w: wet-bulb %v C, must be in [-20, 50)", ErrDomain, tWB)
	}
	cfg := s.cfg

	var (
		state    = stateInitialized
		chiller  ChillerPerformance
		tower    TowerPerformance
		qGPU     float64
		qBld     float64
		qEvap    float64
		residual float64
		iters    int
	)

	state = stateIterating
	for iters = 1; iters <= cfg.MaxIterations; iters++ {
		prev := s.states

		// (a) IT heat flows at the current utilization.
		qGPU = s.gpu.HeatLoad(utilization)
		qBld = s.building.HeatLoad(utilization)
		qEvap = qGPU + qBld

		// (b) Chiller at the previous iteration's tower outlet.
		var err error
		chiller, err = s.chiller.Solve(qEvap, prev.CWFromTower)
		if err != nil {
			return nil, err
		}

		// Condenser outlet from the condenser-side energy balance at the
		// inlet the chiller actually saw this iteration.
		tCWOut := prev.CWFromTower + chiller.QCondW/(s.flows.CW*cfg.CpWater)

		// (c) Tower closes the condenser-water loop.
		tower, err = s.tower.Solve(chiller.QCondW, s.flows.CW, tCWOut, tWB)
		if err != nil {
			return nil, err
		}

		// (d) Every state point from this iteration's heat flows.
		tGPUOut, err := s.gpu.OutletTemperature(cfg.TGPUInC, qGPU, s.flows.GPU)
		if err != nil {
			return nil, err
		}
		next := StatePoints{
			CHWSupply:       cfg.TCHWSupplyC,
			AfterBuildingHX: cfg.TCHWSupplyC + qBld/(s.flows.CHW*cfg.CpWater),
			CHWReturn:       cfg.TCHWSupplyC + qEvap/(s.flows.CHW*cfg.CpWater),
			GPUSupply:       cfg.TGPUInC,
			GPUReturn:       tGPUOut,
			GPUToHX:         tGPUOut,
			CWFromTower:     tower.TOutC,
			CWFromChiller:   tCWOut,
			CWToChiller:     tower.TOutC,
		}
		next.AfterComputeHX = next.AfterBuildingHX + qGPU/(s.flows.CHW*cfg.CpWater)

		// (e, f, g) Convergence check on the largest state-point change.
		residual = next.maxDelta(prev)
		s.states = next
		if residual < cfg.ToleranceC {
			state = stateConverged
			break
		}
	}
	if state != stateConverged {
		state = stateNotConverged
		iters = cfg.MaxIterations
	}

	tAirOut, err := s.building.OutletTemperature(cfg.TAirInC, qBld, s.flows.Air)
	if err != nil {
		return nil, err
	}

	// Auxiliary power: fixed-fraction stand-ins for hydraulic and fan
	// curves. Pump fractions apply to the current cooling load except the
	// compute-coolant pump, which circulates design flow regardless of
	// utilization and is charged against the rated compute load.
	wPumps := cfg.CHWPumpFraction*qEvap + cfg.CWPumpFraction*qEvap + cfg.GPUPumpFraction*s.gpu.Rated()
	wCooling := chiller.WCompW + wPumps + tower.WFanW

	r := &Result{
		Converged:  state == stateConverged,
		Iterations: iters,
		ResidualC:  residual,

		Utilization: utilization,
		TWBC:        tWB,

		PITMW:       qEvap / 1e6,
		QGPUMW:      qGPU / 1e6,
		QBuildingMW: qBld / 1e6,
		QEvapMW:     qEvap / 1e6,
		QCondMW:     chiller.QCondW / 1e6,
		WCompMW:     chiller.WCompW / 1e6,
		WPumpsMW:    wPumps / 1e6,
		WFansMW:     tower.WFanW / 1e6,
		WCoolingMW:  wCooling / 1e6,

		COP: chiller.COP,
		PLR: chiller.PLR,

		MEvap:     tower.MEvap,
		MDrift:    tower.MDrift,
		MBlowdown: tower.MBlowdown,
		MMakeup:   tower.MMakeup,
		COC:       tower.COC,

		TGPUOutC: s.states.GPUReturn,
		TAirOutC: tAirOut,
		States:   s.states,

		Flags: Flags{
			GPUTempOK:         s.gpu.ConstraintSatisfied(s.states.GPUReturn),
			BuildingTempOK:    s.building.ConstraintSatisfied(tAirOut),
			TowerRangeOK:      tower.RangeC >= 0,
			ChillerOverloaded: chiller.Overloaded,
		},
	}
	if chiller.QCondW > 0 {
		r.EnergyBalanceErrPct = math.Abs(chiller.QCondW-(qEvap+chiller.WCompW)) / chiller.QCondW * 100
	}
	r.PUE = PUE(r)
	r.WUE = WUE(r)
	return r, nil
}

// SolveDesign runs Solve at the configured utilization and design ambient
// wet-bulb temperature.
func (s *SystemSolver) SolveDesign() (*Result, error) {
	return s.Solve(s.cfg.Utilization, s.cfg.TWBAmbientC)
}

// Config returns the merged configuration the solver was built with.
func (s *SystemSolver) Config() *Config { return s.cfg }

// Flows returns the fixed design mass flow rates.
func (s *SystemSolver) Flows() FlowRates { return s.flows }

// States returns the current state-point set.
func (s *SystemSolver) States() StatePoints { return s.states }

// Tower exposes the tower model for water-chemistry reporting.
func (s *SystemSolver) Tower() *CoolingTowerModel { return s.tower }

// GPUCount returns the derived compute device count.
func (s *SystemSolver) GPUCount() int { return s.gpu.Units() }
