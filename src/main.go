package main

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/integrii/flaggy"
	"github.com/logrusorgru/aurora"

	"cellsim/src/config"
	"cellsim/src/palette"
	"cellsim/src/rules"
	"cellsim/src/universe"
	"cellsim/src/view"
)

type EnvOptions struct {
	interactive      bool
	randomData       bool
	seed             int64
	template         string
	templatesFile    string
	loadFile         string
	saveFile         string
	configFile       string
	colors           string
	screenshotFormat string
	autoScreenshots  bool
	toroidal         bool
}

func main() {
	eo, uo, cfg := initOptions()

	var stateCh chan universe.Status
	if !eo.interactive {
		stateCh = make(chan universe.Status, 10) //the buffered channel to getting the universe status
	}

	u := universe.New(uo, stateCh)
	u.Do(func(b *universe.Board) {
		b.SetupScreenshots(cfg.Screenshots.Format, cfg.Screenshots.AutoSave, cfg.Screenshots.AutoSavePartial)
	})

	if eo.templatesFile != "" {
		list, err := universe.LoadTemplates(eo.templatesFile)
		if err != nil {
			log.Fatalln(err)
		}
		for _, t := range list {
			u.AddTemplate(t)
		}
	}

	switch {
	case eo.loadFile != "":
		var err error
		u.Do(func(b *universe.Board) {
			err = b.LoadFromFile(eo.loadFile)
		})
		if err != nil {
			log.Fatalln(err)
		}
	case eo.randomData:
		var r *rand.Rand
		if eo.seed != 0 {
			r = rand.New(rand.NewPCG(uint64(eo.seed), 0))
		}
		u.SettleWithRandomData(r)
	default:
		if !u.SettleTemplate(eo.template, universe.Point{}) {
			flaggy.ShowHelpAndExit("unknown template " + eo.template)
		}
	}

	if eo.interactive {
		presets := map[string]palette.Palette{}
		for _, name := range cfg.Presets() {
			if p, err := cfg.Preset(name); err == nil {
				presets[name] = p
			}
		}
		v := view.NewViewTerminal(view.UIOptions{BoardFile: cfg.Board.LastFilename, Presets: presets})
		u.RegisterViewer(v)
		v.Start()
	} else {
		v := view.NewConsoleOut()
		u.RegisterViewer(v)
		v.Start()

		startTime := time.Now()
		u.Run()
		for {
			st := <-stateCh
			if st.RunningMode == universe.RunningStateFinished {
				totalTime := time.Since(startTime).Round(time.Millisecond)
				fmt.Printf("Finished, iteration is: %v, total running time: %v\n", st.IterationNum, totalTime)
				break
			}
		}
		if eo.saveFile != "" {
			var err error
			u.Do(func(b *universe.Board) {
				err = b.SaveToFile(eo.saveFile)
			})
			if err != nil {
				log.Println(aurora.Red(err))
			}
		}
	}

	//the rules may have been changed by the editor
	u.Do(func(b *universe.Board) {
		cfg.Board.Rules = b.Rules()
	})
	u.Close()
	if stateCh != nil {
		close(stateCh)
	}
	if err := cfg.Save(""); err != nil {
		log.Println(aurora.Red(err))
	}
}

func initOptions() (eo *EnvOptions, uo *universe.Options, cfg *config.Config) {
	o := universe.DefaultUniverseOptions
	uo = &o
	uo.Width, uo.Height = 0, 0
	uo.Rules = ""
	eo = &EnvOptions{template: "testSample1", configFile: config.DefaultFilename}

	flaggy.SetName("cellsim")
	flaggy.SetDescription("Cellular automaton simulator")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Int(&uo.Width, "x", "width", "Width of a simulation field")
	flaggy.Int(&uo.Height, "y", "height", "Height of a simulation field")
	flaggy.String(&uo.Rules, "u", "rules", "Rules in the B/S notation, for example B3/S23")
	flaggy.Bool(&eo.toroidal, "t", "toroidal", "Wrap the edges of the field around")
	flaggy.Duration(&uo.Interval, "i", "interval", "Simulation speed (interval between the steps) in format the number with 'ms' suffix, for example 150ms")
	flaggy.Float64(&uo.MaxSpeed, "m", "maxSpeed", "Limit the simulation to maxSpeed generations per second")
	flaggy.Int(&uo.MaxSteps, "s", "maxSteps", "Limit the simulation to maxSteps")
	flaggy.Bool(&eo.interactive, "n", "interactive", "Start interactive mode")
	flaggy.Bool(&eo.randomData, "r", "random", "Settle with random data")
	flaggy.Int64(&eo.seed, "d", "seed", "Seed of the random data, 0 uses the clock")
	flaggy.String(&eo.template, "p", "template", "Settle with the named template")
	flaggy.String(&eo.templatesFile, "f", "templates", "YAML file with additional templates")
	flaggy.String(&eo.loadFile, "l", "load", "Load the board from the file")
	flaggy.String(&eo.saveFile, "o", "save", "Save the board to the file when the simulation is finished")
	flaggy.String(&eo.configFile, "c", "config", "Configuration file")
	flaggy.String(&eo.colors, "k", "colors", "Color preset from the configuration file")
	flaggy.String(&eo.screenshotFormat, "g", "screenshots", "Screenshot filename format, %n is the sequence number")
	flaggy.Bool(&eo.autoScreenshots, "a", "autosave", "Save a screenshot after every generation")

	flaggy.Parse()

	var err error
	if cfg, err = config.Load(eo.configFile); err != nil {
		log.Fatalln(err)
	}

	//flags override the config file
	if uo.Width == 0 {
		uo.Width = cfg.Board.Width
	}
	if uo.Height == 0 {
		uo.Height = cfg.Board.Height
	}
	if uo.Rules == "" {
		uo.Rules = cfg.Board.Rules
	} else if ignored := rules.New().SetFromString(uo.Rules); ignored > 0 {
		log.Printf("rules %q: %d characters ignored", uo.Rules, ignored)
	}
	if uo.MaxSpeed == 0 {
		uo.MaxSpeed = cfg.Board.MaxSpeed
	}
	uo.Toroidal = eo.toroidal || cfg.Board.Toroidal
	if eo.screenshotFormat != "" {
		cfg.Screenshots.Format = eo.screenshotFormat
	}
	if eo.autoScreenshots {
		cfg.Screenshots.AutoSave = true
	}

	if eo.colors != "" {
		uo.Colors, err = cfg.Preset(eo.colors)
	} else {
		uo.Colors, err = cfg.Palette()
	}
	if err != nil {
		log.Println(aurora.Yellow(err))
	}

	if eo.randomData && eo.seed != 0 {
		uo.Advanced = map[string]interface{}{"Seed": eo.seed}
	}

	return
}
