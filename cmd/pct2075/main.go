// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// pct2075 configures a PCT2075 temperature sensor and reads it.
//
// Without any configuration flag the device is only read. Any of -config,
// -hyst, -tos, -idle, -queue, -polarity, -alert or -shutdown writes the full
// configuration first, starting from the power-on defaults.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/GermanBionicSystems/thermal/pct2075"
	"github.com/GermanBionicSystems/thermal/thermogauge"
	"github.com/GermanBionicSystems/thermal/thermoimage"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

type options struct {
	bus       string
	configure bool
	cfg       pct2075.DeviceConfig
	n         int
	interval  time.Duration
	timeout   time.Duration
	gauge     bool
	width     int
	png       string
	verbose   bool

	// out replaces stdout when set.
	out io.Writer
}

var configFlags = []string{"config", "hyst", "tos", "idle", "queue", "polarity", "alert", "shutdown"}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("pct2075", flag.ContinueOnError)
	fs.SetOutput(stderr)
	o := &options{cfg: pct2075.DefaultConfig(pct2075.DefaultAddress)}
	addr := pct2075.DefaultAddress
	hyst := pct2075.ThresholdTemperature(o.cfg.Hysteresis)
	tos := pct2075.ThresholdTemperature(o.cfg.OverTemperature)

	fs.StringVar(&o.bus, "b", "", "I²C bus to use")
	fs.Var(&addr, "a", "8-bit address code of the device, e.g. 0x90")
	cfgPath := fs.String("config", "", "YAML file describing the configuration")
	fs.Var(&hyst, "hyst", "hysteresis threshold, e.g. 75C")
	fs.Var(&tos, "tos", "overtemperature threshold, e.g. 80C")
	idle := fs.Uint("idle", uint(o.cfg.IdleTimeout), "idle time between conversions, in 100ms units (0-31)")
	queue := fs.Uint("queue", uint(o.cfg.FaultQueue), "fault queue length: 1, 2, 4 or 6")
	polarity := fs.String("polarity", "low", "OS output polarity: low or high")
	alert := fs.String("alert", "comparator", "OS output mode: comparator or interrupt")
	shutdown := fs.Bool("shutdown", false, "put the device in shutdown mode")
	fs.IntVar(&o.n, "n", 1, "number of readings, 0 reads until interrupted")
	fs.DurationVar(&o.interval, "interval", time.Second, "time between readings")
	fs.DurationVar(&o.timeout, "timeout", 100*time.Millisecond, "read timeout, 0 waits forever")
	fs.BoolVar(&o.gauge, "gauge", false, "draw a temperature gauge on the terminal")
	fs.IntVar(&o.width, "width", 40, "gauge width")
	fs.StringVar(&o.png, "png", "", "write the last reading to this PNG file")
	fs.BoolVar(&o.verbose, "v", false, "verbose mode")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, errors.New("unexpected argument, try -help")
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, name := range configFlags {
		o.configure = o.configure || set[name]
	}

	if *cfgPath != "" {
		if err := loadConfig(*cfgPath, &o.cfg); err != nil {
			return nil, err
		}
	}
	// Explicit flags override the file.
	var err error
	if set["a"] {
		o.cfg.Address = addr
	}
	if set["hyst"] {
		if o.cfg.Hysteresis, err = pct2075.ThresholdCount(hyst); err != nil {
			return nil, err
		}
	}
	if set["tos"] {
		if o.cfg.OverTemperature, err = pct2075.ThresholdCount(tos); err != nil {
			return nil, err
		}
	}
	if set["idle"] {
		if *idle > 31 {
			return nil, fmt.Errorf("invalid -idle %d", *idle)
		}
		o.cfg.IdleTimeout = uint8(*idle)
	}
	if set["queue"] {
		o.cfg.FaultQueue = pct2075.FaultQueue(*queue)
	}
	if set["polarity"] {
		if o.cfg.AlertPolarity, err = parsePolarity(*polarity); err != nil {
			return nil, err
		}
	}
	if set["alert"] {
		if o.cfg.AlertMode, err = parseAlertMode(*alert); err != nil {
			return nil, err
		}
	}
	if set["shutdown"] {
		o.cfg.OperatingMode = pct2075.ModeNormal
		if *shutdown {
			o.cfg.OperatingMode = pct2075.ModeShutdown
		}
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.n < 0 {
		return nil, fmt.Errorf("invalid -n %d", o.n)
	}
	return o, nil
}

func mainImpl() error {
	o, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}
	if !o.verbose {
		log.SetOutput(io.Discard)
	}
	log.SetFlags(log.Lmicroseconds)

	if _, err := host.Init(); err != nil {
		return err
	}
	bus, err := i2creg.Open(o.bus)
	if err != nil {
		return err
	}
	defer bus.Close()

	t := pct2075.NewI2CTransport(bus)
	if o.verbose {
		t.EnableDebug(log.Printf)
	}
	dev, err := pct2075.New(t, o.cfg.Address)
	if err != nil {
		return err
	}
	dev.SetTimeout(o.timeout)

	cfg := o.cfg
	if o.configure {
		log.Printf("configuring %s: %+v", dev, cfg)
		if err := dev.Configure(cfg); err != nil {
			return err
		}
	} else if cfg, err = dev.ReadConfig(); err != nil {
		return err
	}
	return run(dev, o, cfg)
}

func run(dev *pct2075.Dev, o *options, cfg pct2075.DeviceConfig) error {
	r := thermoimage.Reading{
		Hysteresis:      pct2075.ThresholdTemperature(cfg.Hysteresis),
		OverTemperature: pct2075.ThresholdTemperature(cfg.OverTemperature),
	}
	var g *thermogauge.Dev
	if o.gauge {
		var err error
		if g, err = thermogauge.New(&thermogauge.Opts{X: o.width, Out: o.out}); err != nil {
			return err
		}
		defer g.Halt()
	}

	var w io.Writer = os.Stdout
	if o.out != nil {
		w = o.out
	}
	env := physic.Env{}
	for i := 0; o.n == 0 || i < o.n; i++ {
		if i != 0 {
			time.Sleep(o.interval)
		}
		if err := dev.Sense(&env); err != nil {
			return err
		}
		r.Temperature = env.Temperature
		if g != nil {
			if err := g.Show(r.Temperature, r.Hysteresis, r.OverTemperature); err != nil {
				return err
			}
		} else {
			alert := ""
			if r.Alert() {
				alert = " (over Tos)"
			}
			fmt.Fprintf(w, "%s: %8s%s\n", dev, r.Temperature, alert)
		}
	}
	if o.png != "" {
		if err := thermoimage.SavePNG(o.png, 128, 64, r); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := mainImpl(); err != nil {
		fmt.Fprintf(os.Stderr, "pct2075: %s.\n", err)
		os.Exit(1)
	}
}
