// Command ember runs a script against a display stage, demonstrating the
// event-propagation core: listeners registered from the script fire through
// the capture/target/bubble walk, and a frame broadcast reaches every
// registered object.
package main

import (
	"flag"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/embervm/ember/avm"
	"github.com/embervm/ember/display"
)

const defaultStage = `
<stage>
  <sprite name="world">
    <sprite name="hero">
      <video name="screen"/>
    </sprite>
  </sprite>
</stage>`

func main() {
	stagePath := flag.String("stage", "", "path to stage markup (default: a built-in demo stage)")
	scriptPath := flag.String("script", "", "path to a script to run against the stage")
	frames := flag.Int("frames", 1, "number of enterFrame broadcasts after the script runs")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	log := logrus.New()
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	markup := defaultStage
	if *stagePath != "" {
		data, err := os.ReadFile(*stagePath)
		if err != nil {
			log.WithError(err).Fatal("reading stage markup")
		}
		markup = string(data)
	}

	root, err := display.ParseStage(strings.NewReader(markup))
	if err != nil {
		log.WithError(err).Fatal("parsing stage markup")
	}

	rt := avm.NewRuntime()
	rt.SetLogger(log)
	rt.BindStage(root)

	if *scriptPath != "" {
		code, err := os.ReadFile(*scriptPath)
		if err != nil {
			log.WithError(err).Fatal("reading script")
		}
		if _, err := rt.Execute(string(code)); err != nil {
			log.WithError(err).Fatal("script failed")
		}
	}

	for i := 0; i < *frames; i++ {
		if err := rt.Broadcast("enterFrame"); err != nil {
			log.WithError(err).Fatal("enterFrame broadcast failed")
		}
	}
}
