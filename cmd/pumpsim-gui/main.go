// Pumpsim-gui is the desktop variant of the pump PLC simulator. It exposes
// the same Modbus/TCP register map as cmd/pumpsim and adds sliders, entries
// and a register monitor in a fyne window.
package main

import (
	"flag"
	"fmt"
	"image/color"
	"log/slog"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/rwirdemann/pumpsim"
	"github.com/rwirdemann/pumpsim/modbus"
)

var (
	green = color.NRGBA{G: 0xa0, A: 0xff}
	red   = color.NRGBA{R: 0xc0, A: 0xff}
)

// uiLogger appends server traffic to the log pane. Append is called from
// server goroutines, so the widget update is marshalled onto the UI thread.
type uiLogger struct {
	grid   *widget.TextGrid
	scroll *container.Scroll
}

func (l *uiLogger) Append(text string) {
	fyne.Do(func() {
		l.grid.Append(text)
		l.scroll.ScrollToBottom()
	})
}

// paramRow bundles the widgets of one operating parameter.
type paramRow struct {
	param      pumpsim.Param
	valueLabel *widget.Label
	slider     *widget.Slider
	entry      *widget.Entry
}

type ui struct {
	sim        *pumpsim.Simulator
	server     *modbus.Server
	bank       *modbus.Bank
	logger     *uiLogger
	config     pumpsim.Config
	window     fyne.Window
	rows       map[uint16]*paramRow
	refreshing bool // suppresses slider callbacks during external refresh

	serverButton *widget.Button
	serverStatus *canvas.Text
	pumpState    *canvas.Text
	startButton  *widget.Button
	stopButton   *widget.Button
	npshaLabel   *widget.Label
	npshrLabel   *widget.Label
	marginLabel  *widget.Label
	monitor      *widget.List
	snapshot     pumpsim.Snapshot
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config", "path to the configuration directory")
	flag.Parse()

	config, err := pumpsim.LoadConfig(configPath)
	if err != nil {
		slog.Warn("using default configuration", "err", err)
		config = pumpsim.DefaultConfig
	}

	myApp := app.New()
	myWindow := myApp.NewWindow("PLC Simulator for NPSH Analysis")

	logArea := widget.NewTextGrid()
	logScroll := container.NewScroll(logArea)
	logScroll.SetMinSize(fyne.NewSize(760, 120))
	logger := &uiLogger{grid: logArea, scroll: logScroll}

	bank := modbus.NewBank(pumpsim.BankSize)
	sim := pumpsim.NewSimulator(bank, pumpsim.Spec8x15DMX3, time.Duration(config.UpdateInterval)*time.Millisecond, logger)
	server := modbus.NewServer(config.Server.Url, time.Duration(config.Server.Timeout)*time.Second, uint(config.Server.MaxClients), bank, logger)

	u := &ui{
		sim:      sim,
		server:   server,
		bank:     bank,
		logger:   logger,
		config:   config,
		window:   myWindow,
		rows:     make(map[uint16]*paramRow),
		snapshot: sim.Snapshot(),
	}

	content := container.NewBorder(nil, logScroll, nil, nil, u.buildTabs(config))
	myWindow.SetContent(content)
	myWindow.Resize(fyne.NewSize(800, 700))

	// start server and mirror loop on launch, like the PLC would
	u.toggleServer()
	sim.Start()

	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for range ticker.C {
			fyne.Do(u.refresh)
		}
	}()

	myWindow.ShowAndRun()
	sim.Stop()
	_ = u.server.Stop()
}

func (u *ui) buildTabs(config pumpsim.Config) *container.AppTabs {
	controls := container.NewVBox(
		u.buildServerBar(config),
		container.NewGridWithColumns(2,
			container.NewVBox(u.buildPumpPanel()),
			container.NewVBox(u.buildParamTabs(), u.buildNPSHPanel(), u.buildMetadataPanel()),
		),
	)
	return container.NewAppTabs(
		container.NewTabItem("PLC Controls", controls),
		container.NewTabItem("Register Monitor", u.buildMonitor()),
	)
}

func (u *ui) buildServerBar(config pumpsim.Config) fyne.CanvasObject {
	urlEntry := widget.NewEntry()
	urlEntry.SetText(config.Server.Url)

	u.serverStatus = canvas.NewText("Server: Stopped", red)
	u.serverButton = widget.NewButton("Start Server", func() {
		if !u.server.Running() && urlEntry.Text != u.server.URL() {
			u.server = modbus.NewServer(urlEntry.Text,
				time.Duration(u.config.Server.Timeout)*time.Second,
				uint(u.config.Server.MaxClients), u.bank, u.logger)
		}
		u.toggleServer()
	})

	return container.NewHBox(
		widget.NewLabel("Listen URL:"),
		container.NewGridWrap(fyne.NewSize(200, 36), urlEntry),
		u.serverButton,
		u.serverStatus,
	)
}

func (u *ui) toggleServer() {
	if u.server.Running() {
		if err := u.server.Stop(); err != nil {
			dialog.ShowError(err, u.window)
			return
		}
		u.serverButton.SetText("Start Server")
		u.serverStatus.Text = "Server: Stopped"
		u.serverStatus.Color = red
	} else {
		if err := u.server.Start(); err != nil {
			dialog.ShowError(fmt.Errorf("failed to start server: %w", err), u.window)
			u.serverStatus.Text = "Server: Error"
			u.serverStatus.Color = red
			u.serverStatus.Refresh()
			return
		}
		u.serverButton.SetText("Stop Server")
		u.serverStatus.Text = "Server: Running"
		u.serverStatus.Color = green
	}
	u.serverStatus.Refresh()
}

func (u *ui) buildPumpPanel() fyne.CanvasObject {
	u.pumpState = canvas.NewText("STOPPED", red)
	u.pumpState.TextSize = 24
	u.pumpState.TextStyle = fyne.TextStyle{Bold: true}

	u.startButton = widget.NewButton("Start Pump", func() {
		u.sim.StartPump()
		u.refresh()
	})
	u.startButton.Importance = widget.SuccessImportance
	u.stopButton = widget.NewButton("Stop Pump", func() {
		u.sim.StopPump()
		u.refresh()
	})
	u.stopButton.Importance = widget.DangerImportance
	u.stopButton.Disable()

	return widget.NewCard("Pump Status - 8x15DMX-3", "",
		container.NewVBox(
			container.NewCenter(u.pumpState),
			container.NewHBox(u.startButton, u.stopButton),
		))
}

func (u *ui) buildParamTabs() fyne.CanvasObject {
	basic := container.NewVBox()
	advanced := container.NewVBox()
	for i, p := range pumpsim.Params {
		row := u.buildParamRow(p)
		if i < 3 {
			basic.Add(row)
		} else {
			advanced.Add(row)
		}
	}
	return container.NewAppTabs(
		container.NewTabItem("Basic Parameters", basic),
		container.NewTabItem("Advanced Parameters", advanced),
	)
}

func (u *ui) buildParamRow(p pumpsim.Param) fyne.CanvasObject {
	row := &paramRow{param: p}
	row.valueLabel = widget.NewLabel(p.Format(p.Default))

	row.slider = widget.NewSlider(p.Min, p.Max)
	row.slider.Step = p.Step
	row.slider.SetValue(p.Default)
	row.slider.OnChanged = func(value float64) {
		if u.refreshing {
			return
		}
		u.applyParam(row, value)
	}

	row.entry = widget.NewEntry()
	row.entry.SetText(strconv.FormatFloat(p.Default, 'f', p.Decimals, 64))
	row.entry.OnSubmitted = func(text string) {
		value, err := strconv.ParseFloat(text, 64)
		if err != nil || !p.InRange(value) {
			// reset to the current value, like the original entry validation
			row.entry.SetText(strconv.FormatFloat(u.sim.Param(p.Register), 'f', p.Decimals, 64))
			return
		}
		u.applyParam(row, value)
		row.slider.SetValue(value)
	}

	u.rows[p.Register] = row
	return container.NewBorder(nil, nil,
		container.NewHBox(widget.NewLabel(fmt.Sprintf("%s (%s):", p.Name, p.Unit)), row.valueLabel),
		container.NewGridWrap(fyne.NewSize(70, 36), row.entry),
		row.slider,
	)
}

func (u *ui) applyParam(row *paramRow, value float64) {
	if err := u.sim.SetParam(row.param.Register, value); err != nil {
		slog.Error(err.Error())
		return
	}
	row.valueLabel.SetText(row.param.Format(value))
	u.updateNPSH(u.sim.Snapshot())
}

func (u *ui) buildNPSHPanel() fyne.CanvasObject {
	u.npshaLabel = widget.NewLabel("---")
	u.npshrLabel = widget.NewLabel("---")
	u.marginLabel = widget.NewLabel("---")
	return widget.NewCard("NPSH Calculation Status", "",
		container.NewGridWithColumns(2,
			widget.NewLabel("NPSHa:"), u.npshaLabel,
			widget.NewLabel("NPSHr:"), u.npshrLabel,
			widget.NewLabel("Margin:"), u.marginLabel,
		))
}

func (u *ui) buildMetadataPanel() fyne.CanvasObject {
	spec := u.sim.Spec()
	return widget.NewCard(spec.Model+" Pump Metadata", "",
		container.NewGridWithColumns(2,
			widget.NewLabel("Rated Flow:"), widget.NewLabel(fmt.Sprintf("%.0f m³/h", spec.RatedFlow)),
			widget.NewLabel("AOR Range:"), widget.NewLabel(fmt.Sprintf("%.0f-%.0f m³/h", spec.AORMin, spec.AORMax)),
			widget.NewLabel("POR Range:"), widget.NewLabel(fmt.Sprintf("%.0f-%.0f m³/h", spec.PORMin, spec.PORMax)),
			widget.NewLabel("Rated NPSHr:"), widget.NewLabel(fmt.Sprintf("%.1f m", spec.RatedNPSHr)),
		))
}

func (u *ui) buildMonitor() fyne.CanvasObject {
	u.monitor = widget.NewList(
		func() int {
			return len(pumpsim.MonitorRegisters)
		},
		func() fyne.CanvasObject {
			register := widget.NewLabel("template")
			description := widget.NewLabel("template")
			value := widget.NewLabel("template")
			raw := widget.NewLabel("template")
			return container.NewGridWithColumns(4, register, description, value, raw)
		},
		func(i widget.ListItemID, o fyne.CanvasObject) {
			cont := o.(*fyne.Container)
			reg := pumpsim.MonitorRegisters[i]
			raw := u.snapshot.Raw[reg]
			cont.Objects[0].(*widget.Label).SetText(fmt.Sprintf("%d", reg))
			cont.Objects[1].(*widget.Label).SetText(pumpsim.RegisterDescription(reg))
			cont.Objects[2].(*widget.Label).SetText(pumpsim.FormatRegister(reg, raw))
			cont.Objects[3].(*widget.Label).SetText(fmt.Sprintf("%d", raw))
		})
	return u.monitor
}

// refresh pulls the simulator state into the widgets. Runs on the UI thread.
func (u *ui) refresh() {
	u.snapshot = u.sim.Snapshot()
	u.refreshing = true
	defer func() { u.refreshing = false }()

	for reg, row := range u.rows {
		value := u.snapshot.Values[reg]
		if row.slider.Value != value {
			row.slider.SetValue(value)
			row.entry.SetText(strconv.FormatFloat(value, 'f', row.param.Decimals, 64))
		}
		row.valueLabel.SetText(row.param.Format(value))
	}

	if u.snapshot.Running {
		u.pumpState.Text = "RUNNING"
		u.pumpState.Color = green
		u.startButton.Disable()
		u.stopButton.Enable()
	} else {
		u.pumpState.Text = "STOPPED"
		u.pumpState.Color = red
		u.startButton.Enable()
		u.stopButton.Disable()
	}
	u.pumpState.Refresh()

	u.updateNPSH(u.snapshot)
	u.monitor.Refresh()
}

func (u *ui) updateNPSH(snapshot pumpsim.Snapshot) {
	u.npshaLabel.SetText(fmt.Sprintf("%.2f m", snapshot.NPSH.Available))
	u.npshrLabel.SetText(fmt.Sprintf("%.2f m", snapshot.NPSH.Required))
	margin := snapshot.NPSH.Margin()
	if margin >= 0 {
		u.marginLabel.SetText(fmt.Sprintf("%.2f m ✅", margin))
	} else {
		u.marginLabel.SetText(fmt.Sprintf("%.2f m ⚠️", margin))
	}
}
