package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/mrkey4real/615-thermodynamics-project/pkg/plant"
	"github.com/mrkey4real/615-thermodynamics-project/pkg/sweep"
	"github.com/mrkey4real/615-thermodynamics-project/pkg/types"
)

// resultDoc is the serialized view of a solve, with the key names the
// original JSON result files used.
type resultDoc struct {
	Converged      bool    `json:"converged"`
	Iterations     int     `json:"iterations"`
	ResidualC      float64 `json:"residual_c"`
	Utilization    float64 `json:"utilization"`
	TWBC           float64 `json:"t_wb_c"`
	PITMW          float64 `json:"p_it_mw"`
	QEvapMW        float64 `json:"q_evap_mw"`
	QCondMW        float64 `json:"q_cond_mw"`
	WCompMW        float64 `json:"w_comp_mw"`
	WPumpsMW       float64 `json:"w_pumps_mw"`
	WFansMW        float64 `json:"w_fans_mw"`
	WCoolingMW     float64 `json:"w_cooling_total_mw"`
	COP            float64 `json:"cop"`
	PLR            float64 `json:"plr"`
	PUE            float64 `json:"pue"`
	WUE            float64 `json:"wue_l_kwh"`
	MEvapKgS       float64 `json:"m_evap_kg_s"`
	MDriftKgS      float64 `json:"m_drift_kg_s"`
	MBlowdownKgS   float64 `json:"m_blowdown_kg_s"`
	MMakeupKgS     float64 `json:"m_makeup_kg_s"`
	MMakeupLHr     float64 `json:"m_makeup_l_hr"`
	COC            float64 `json:"coc"`
	TGPUOutC       float64 `json:"t_gpu_out_c"`
	TAirOutC       float64 `json:"t_air_out_c"`
	GPUTempOK      bool    `json:"gpu_temp_ok"`
	BuildingTempOK bool    `json:"building_temp_ok"`
	EnergyBalPct   float64 `json:"energy_balance_error_pct"`
}

func toDoc(r *plant.Result) resultDoc {
	return resultDoc{
		Converged:      r.Converged,
		Iterations:     r.Iterations,
		ResidualC:      r.ResidualC,
		Utilization:    r.Utilization,
		TWBC:           r.TWBC,
		PITMW:          r.PITMW,
		QEvapMW:        r.QEvapMW,
		QCondMW:        r.QCondMW,
		WCompMW:        r.WCompMW,
		WPumpsMW:       r.WPumpsMW,
		WFansMW:        r.WFansMW,
		WCoolingMW:     r.WCoolingMW,
		COP:            r.COP,
		PLR:            r.PLR,
		PUE:            r.PUE,
		WUE:            r.WUE,
		MEvapKgS:       r.MEvap,
		MDriftKgS:      r.MDrift,
		MBlowdownKgS:   r.MBlowdown,
		MMakeupKgS:     r.MMakeup,
		MMakeupLHr:     types.MassFlow(r.MMakeup).LPerHour(),
		COC:            r.COC,
		TGPUOutC:       r.TGPUOutC,
		TAirOutC:       r.TAirOutC,
		GPUTempOK:      r.Flags.GPUTempOK,
		BuildingTempOK: r.Flags.BuildingTempOK,
		EnergyBalPct:   r.EnergyBalanceErrPct,
	}
}

func writeResultJSON(path string, r *plant.Result) error {
	b, err := json.MarshalIndent(toDoc(r), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func check(ok bool) string {
	if ok {
		return "ok"
	}
	return "VIOLATED"
}

func printSummary(w io.Writer, solver *plant.SystemSolver, r *plant.Result) {
	cfg := solver.Config()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "\n%s - cooling plant performance summary\n\n", cfg.Scenario)

	fmt.Fprintln(tw, "IT LOAD\t")
	fmt.Fprintf(tw, "  total IT load\t%s\n", types.Power(r.PITMW*1e6).Humanized())
	fmt.Fprintf(tw, "  compute load\t%s (%d× %s)\n", types.Power(r.QGPUMW*1e6).Humanized(), solver.GPUCount(), cfg.GPUModel)
	fmt.Fprintf(tw, "  building load\t%s\n", types.Power(r.QBuildingMW*1e6).Humanized())
	fmt.Fprintf(tw, "  utilization\t%.1f%%\n", r.Utilization*100)

	fmt.Fprintln(tw, "COOLING POWER\t")
	fmt.Fprintf(tw, "  chiller compressor\t%.1f MW\n", r.WCompMW)
	fmt.Fprintf(tw, "  pumps (all loops)\t%.1f MW\n", r.WPumpsMW)
	fmt.Fprintf(tw, "  tower fans\t%.1f MW\n", r.WFansMW)
	fmt.Fprintf(tw, "  total cooling\t%.1f MW\n", r.WCoolingMW)

	fmt.Fprintln(tw, "PERFORMANCE\t")
	fmt.Fprintf(tw, "  PUE\t%.3f\n", r.PUE)
	fmt.Fprintf(tw, "  chiller COP\t%.2f\n", r.COP)
	fmt.Fprintf(tw, "  part-load ratio\t%.1f%%\n", r.PLR*100)
	fmt.Fprintf(tw, "  cooling duty\t%.0f tons\n", types.Power(r.QEvapMW*1e6).Tons())

	fmt.Fprintln(tw, "WATER\t")
	fmt.Fprintf(tw, "  evaporation\t%s\n", types.MassFlow(r.MEvap).Humanized())
	fmt.Fprintf(tw, "  blowdown\t%s\n", types.MassFlow(r.MBlowdown).Humanized())
	fmt.Fprintf(tw, "  total makeup\t%s\n", types.MassFlow(r.MMakeup).Humanized())
	fmt.Fprintf(tw, "  WUE\t%.3f L/kWh\n", r.WUE)
	fmt.Fprintf(tw, "  annual water\t%.1f million m³\n", plant.AnnualWaterM3(r)/1e6)
	fmt.Fprintf(tw, "  COC\t%.1f\n", r.COC)

	fmt.Fprintln(tw, "TEMPERATURES\t")
	fmt.Fprintf(tw, "  ambient wet bulb\t%.1f °C\n", r.TWBC)
	fmt.Fprintf(tw, "  compute coolant out\t%.1f °C (limit %.0f °C, %s)\n", r.TGPUOutC, cfg.GPUMaxTempC, check(r.Flags.GPUTempOK))
	fmt.Fprintf(tw, "  building air out\t%.1f °C (limit %.0f °C, %s)\n", r.TAirOutC, cfg.BuildingMaxTempC, check(r.Flags.BuildingTempOK))
	fmt.Fprintf(tw, "  CHW supply/return\t%.1f / %.1f °C\n", r.States.CHWSupply, r.States.CHWReturn)
	fmt.Fprintf(tw, "  CW range\t%.1f °C\n", r.States.CWFromChiller-r.States.CWFromTower)
	fmt.Fprintf(tw, "  tower approach\t%.1f °C\n", r.States.CWFromTower-r.TWBC)

	fmt.Fprintln(tw, "VALIDATION\t")
	fmt.Fprintf(tw, "  energy balance error\t%.4f%%\n", r.EnergyBalanceErrPct)
	fmt.Fprintf(tw, "  converged\t%v (%d iterations, residual %.4f °C)\n", r.Converged, r.Iterations, r.ResidualC)
	tw.Flush()
	fmt.Fprintln(w)
}

func printComparison(w io.Writer, base, opt *plant.Result, tower *plant.CoolingTowerModel) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "\nbaseline vs optimized\n\n")
	fmt.Fprintln(tw, "METRIC\tBASELINE\tOPTIMIZED\tCHANGE")
	fmt.Fprintln(tw, "------\t--------\t---------\t------")
	row := func(name string, b, o float64, format string) {
		var change string
		if b != 0 {
			change = fmt.Sprintf("%+.1f%%", (o-b)/b*100)
		}
		fmt.Fprintf(tw, "%s\t"+format+"\t"+format+"\t%s\n", name, b, o, change)
	}
	row("COC", base.COC, opt.COC, "%.1f")
	row("PUE", base.PUE, opt.PUE, "%.3f")
	row("COP", base.COP, opt.COP, "%.2f")
	row("WUE (L/kWh)", base.WUE, opt.WUE, "%.3f")
	row("blowdown (kg/s)", base.MBlowdown, opt.MBlowdown, "%.1f")
	row("makeup (kg/s)", base.MMakeup, opt.MMakeup, "%.1f")
	tw.Flush()

	annualSavingsM3 := plant.AnnualWaterM3(base) - plant.AnnualWaterM3(opt)
	fmt.Fprintf(w, "\nannual water savings: %.2f million m³\n", annualSavingsM3/1e6)

	if tower.MaxCOC() > 0 {
		ws, err := tower.WaterSavings(base.COC)
		if err == nil {
			fmt.Fprintf(w, "silica-limited max COC: %.1f (running at %.1f), blowdown reduction %.1f%% vs baseline\n",
				tower.MaxCOC(), ws.OptimizedCOC, ws.BlowdownReductionPct)
		}
	}
	fmt.Fprintln(w)
}

func printSweep(w io.Writer, outcomes []sweep.Outcome, s sweep.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tTIME\tT_wb (°C)\tCOP\tPUE\tMAKEUP (kg/s)\tCONVERGED")
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(tw, "%d\t%s\t%.1f\terror: %v\t\t\t\n", o.Index, o.Timestamp, o.TWBC, o.Err)
			continue
		}
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.2f\t%.3f\t%.1f\t%v\n",
			o.Index, o.Timestamp, o.TWBC, o.Result.COP, o.Result.PUE, o.Result.MMakeup, o.Result.Converged)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nsweep summary over %d points (%d converged, %d not converged, %d failed):\n",
		s.Points, s.Converged, s.NotConverged, s.Failed)
	fmt.Fprintf(w, "- PUE:    mean %.3f  min %.3f  max %.3f\n", s.MeanPUE, s.MinPUE, s.MaxPUE)
	fmt.Fprintf(w, "- COP:    mean %.2f  min %.2f  max %.2f\n", s.MeanCOP, s.MinCOP, s.MaxCOP)
	fmt.Fprintf(w, "- makeup: mean %.1f kg/s  peak %.1f kg/s\n", s.MeanMakeup, s.PeakMakeup)
	fmt.Fprintf(w, "- WUE:    mean %.3f L/kWh, total water %.0f m³\n", s.MeanWUE, s.TotalWaterM3)
	fmt.Fprintln(w)
}

func writeSweepCSV(path string, outcomes []sweep.Outcome) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write([]string{
		"index", "timestamp", "t_wb_c", "converged", "iterations",
		"cop", "plr", "pue", "wue_l_kwh",
		"w_comp_mw", "w_cooling_total_mw",
		"m_evap_kg_s", "m_blowdown_kg_s", "m_makeup_kg_s",
	}); err != nil {
		return err
	}
	for _, o := range outcomes {
		if o.Err != nil {
			continue
		}
		r := o.Result
		if err := cw.Write([]string{
			strconv.Itoa(o.Index), o.Timestamp,
			fmtF(o.TWBC), strconv.FormatBool(r.Converged), strconv.Itoa(r.Iterations),
			fmtF(r.COP), fmtF(r.PLR), fmtF(r.PUE), fmtF(r.WUE),
			fmtF(r.WCompMW), fmtF(r.WCoolingMW),
			fmtF(r.MEvap), fmtF(r.MBlowdown), fmtF(r.MMakeup),
		}); err != nil {
			return err
		}
	}
	return nil
}

func fmtF(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }

func writeSweepJSON(path string, outcomes []sweep.Outcome, s sweep.Summary) error {
	type pointDoc struct {
		Index     int       `json:"index"`
		Timestamp string    `json:"timestamp,omitempty"`
		TWBC      float64   `json:"t_wb_c"`
		Error     string    `json:"error,omitempty"`
		Result    resultDoc `json:"result"`
	}
	doc := struct {
		Summary sweep.Summary `json:"summary"`
		Points  []pointDoc    `json:"points"`
	}{Summary: s}

	for _, o := range outcomes {
		p := pointDoc{Index: o.Index, Timestamp: o.Timestamp, TWBC: o.TWBC}
		if o.Err != nil {
			p.Error = o.Err.Error()
		} else {
			p.Result = toDoc(o.Result)
		}
		doc.Points = append(doc.Points, p)
	}

	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

func writeSweepHTML(path string, cfg *plant.Config, outcomes []sweep.Outcome, s sweep.Summary) error {
	type view struct {
		Scenario string
		Summary  sweep.Summary
		Outcomes []sweep.Outcome
	}
	var buf bytes.Buffer
	if err := sweepTpl.Execute(&buf, view{Scenario: cfg.Scenario, Summary: s, Outcomes: outcomes}); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

var sweepTpl = template.Must(template.New("sweep").Parse(`<!doctype html>
<html lang="en"><meta charset="utf-8">
<title>Cooling Plant Weather Sweep</title>
<style>
body{font-family:system-ui,Segoe UI,Roboto,Helvetica,Arial,sans-serif;margin:20px}
h1,h2{margin:0 0 8px}
table{border-collapse:collapse;width:100%;font-size:14px}
th,td{border:1px solid #ddd;padding:6px 8px;text-align:right}
th:first-child,td:first-child{text-align:left}
ul{margin:6px 0 14px;padding-left:20px}
.small{color:#555}
</style>

<h1>Cooling Plant Weather Sweep - {{.Scenario}}</h1>

<p class="small">
Points: {{.Summary.Points}} &nbsp;|&nbsp;
Converged: {{.Summary.Converged}} &nbsp;|&nbsp;
Mean PUE: {{printf "%.3f" .Summary.MeanPUE}} &nbsp;|&nbsp;
Mean COP: {{printf "%.2f" .Summary.MeanCOP}}
</p>

<h2>Summary</h2>
<ul>
<li>PUE: mean {{printf "%.3f" .Summary.MeanPUE}}, min {{printf "%.3f" .Summary.MinPUE}}, max {{printf "%.3f" .Summary.MaxPUE}}</li>
<li>COP: mean {{printf "%.2f" .Summary.MeanCOP}}, min {{printf "%.2f" .Summary.MinCOP}}, max {{printf "%.2f" .Summary.MaxCOP}}</li>
<li>Makeup: mean {{printf "%.1f" .Summary.MeanMakeup}} kg/s, peak {{printf "%.1f" .Summary.PeakMakeup}} kg/s</li>
<li>WUE: mean {{printf "%.3f" .Summary.MeanWUE}} L/kWh</li>
<li>Total water: {{printf "%.0f" .Summary.TotalWaterM3}} m³</li>
<li>Not converged: {{.Summary.NotConverged}}, failed: {{.Summary.Failed}}</li>
</ul>

<h2>Per-point</h2>
<table>
<thead>
<tr><th>#</th><th>time</th><th>T_wb (°C)</th><th>COP</th><th>PUE</th><th>makeup (kg/s)</th><th>converged</th></tr>
</thead>
<tbody>
{{range .Outcomes}}
<tr>
<td>{{.Index}}</td>
<td style="text-align:left">{{.Timestamp}}</td>
<td>{{printf "%.1f" .TWBC}}</td>
{{if .Err}}
<td colspan="4">{{.Err}}</td>
{{else}}
<td>{{printf "%.2f" .Result.COP}}</td>
<td>{{printf "%.3f" .Result.PUE}}</td>
<td>{{printf "%.1f" .Result.MMakeup}}</td>
<td>{{.Result.Converged}}</td>
{{end}}
</tr>
{{end}}
</tbody>
</table>
</html>`))
