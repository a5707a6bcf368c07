package flags

import (
	"time"

	"github.com/urfave/cli"
	"golang.org/x/xerrors"
)

//user
var (
	DoLog      = false
	LogFile    = ""
	DoCompare  = ""               //model whose results are compared with the main run
	TimeLimit  = time.Duration(0) //unit: ?h?m?s, 0 = none
	DoParallel = false            //finalize objects in parallel
)

//my use
var DoPerformance = false

// Flags are the command line flags of the driver.
var Flags = []cli.Flag{
	cli.BoolFlag{Name: "doLog", Usage: "Do log at debug level."},
	cli.StringFlag{Name: "logFile", Usage: "Write the log to this file instead of stderr."},
	cli.StringFlag{Name: "compare", Usage: "Compare the results with the ones of this model."},
	cli.StringFlag{Name: "timeLimit", Usage: "Set time limit to ?h?m?s or ?m?s or ?s, e.g. 1h15m30.918273645s."},
	cli.BoolFlag{Name: "doParallel", Usage: "Finalize the objects in parallel."},
	cli.BoolFlag{Name: "doPerformance", Usage: "Print the timers after the run."},
}

//analyze all flags from input
func ParseFlags(c *cli.Context) error {
	DoLog = c.GlobalBool("doLog")
	LogFile = c.GlobalString("logFile")
	DoCompare = c.GlobalString("compare")
	DoParallel = c.GlobalBool("doParallel")
	DoPerformance = c.GlobalBool("doPerformance")

	TimeLimit = 0
	if s := c.GlobalString("timeLimit"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return xerrors.Errorf("timeLimit: %w", err)
		}
		TimeLimit = d
	}
	return nil
}
