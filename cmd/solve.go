package cmd

import (
	"fmt"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/Ehs-Dhs/Nektar/comm"
	"github.com/Ehs-Dhs/Nektar/fields"
	"github.com/Ehs-Dhs/Nektar/filters"
	"github.com/Ehs-Dhs/Nektar/session"
	"github.com/Ehs-Dhs/Nektar/solver"
)

type SolveConfig struct {
	SessionFile string
	NSteps      int
	Profile     bool
}

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "advance the incompressible NS equations in time",
	Long:  `advance the incompressible NS equations in time from a YAML session file`,
	Run: func(cmd *cobra.Command, args []string) {
		sc := &SolveConfig{}
		sc.SessionFile, _ = cmd.Flags().GetString("session")
		sc.NSteps, _ = cmd.Flags().GetInt("nsteps")
		sc.Profile, _ = cmd.Flags().GetBool("profile")
		if len(args) > 0 {
			sc.SessionFile = args[0]
		}
		if sc.SessionFile == "" {
			panic(fmt.Errorf("a session file is required"))
		}
		Solve(sc)
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().StringP("session", "s", "", "YAML session file")
	solveCmd.Flags().IntP("nsteps", "n", 0, "number of steps (overrides session NumSteps)")
	solveCmd.Flags().BoolP("profile", "p", false, "generate a runtime profile of compute")
}

func Solve(sc *SolveConfig) {
	sess, err := session.LoadFile(sc.SessionFile)
	if err != nil {
		panic(err)
	}
	sess.Print()

	var (
		kx       = sess.LoadIntParameter("Kx", 4)
		ky       = sess.LoadIntParameter("Ky", 4)
		modes    = sess.LoadIntParameter("NumModes", 5)
		homModes = sess.LoadIntParameter("HomModesZ", 0)
		nsteps   = sess.LoadIntParameter("NumSteps", 1)
	)
	if sc.NSteps != 0 {
		nsteps = sc.NSteps
	}

	homogeneous := solver.NotHomogeneous
	if sess.MatchSolverInfo("Homogeneous", "1D") {
		homogeneous = solver.Homogeneous1D
	}

	variables := sess.Variables
	if len(variables) == 0 {
		variables = []string{"u", "v", "p"}
	}

	flds := make([]fields.Field, len(variables))
	for i := range flds {
		if homogeneous == solver.Homogeneous1D {
			flds[i] = fields.NewExpListHomogeneous(kx, ky, modes, homModes)
		} else {
			flds[i] = fields.NewExpList(kx, ky, modes)
		}
	}

	var flts []filters.Filter
	for _, fs := range sess.Filters {
		switch fs.Type {
		case "HistoryPoint":
			flts = append(flts, filters.NewHistoryPoint(
				int(fs.Params["Field"]), int(fs.Params["Point"]), fs.File))
		default:
			panic(fmt.Errorf("unknown filter type [%s]", fs.Type))
		}
	}

	s := solver.New(solver.Config{
		Session:         sess,
		Comm:            comm.NewSerial(),
		Fields:          flds,
		Variables:       variables,
		TimeStep:        sess.LoadParameter("TimeStep", 0.001),
		IntSteps:        sess.LoadIntParameter("TimeIntegrationOrder", 1),
		SpaceDim:        2,
		SubStepping:     sess.MatchSolverInfo("SubStepping", "True"),
		HomogeneousType: homogeneous,
		NpointsZ:        homModes,
		Filters:         flts,
	})

	if sc.Profile {
		defer profile.Start().Stop()
	}

	s.AdvanceInTime(nsteps)
	fmt.Printf("Completed %d steps, final time %g\n", nsteps, s.Time())
}
