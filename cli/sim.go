package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"sync"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	basefake "go.viam.com/drivecore/components/base/fake"
	"go.viam.com/drivecore/components/base/sensorcontrolled"
	"go.viam.com/drivecore/components/motor"
	motorfake "go.viam.com/drivecore/components/motor/fake"
	"go.viam.com/drivecore/components/movementsensor"
	"go.viam.com/drivecore/components/sensor"
	sensorfake "go.viam.com/drivecore/components/sensor/fake"
	"go.viam.com/drivecore/config"
	"go.viam.com/drivecore/logging"
	"go.viam.com/drivecore/robot"
	"go.viam.com/drivecore/services/autonomous"
)

const (
	// settleWindow is how many final heading samples a turn's settled error is averaged over.
	settleWindow = 10

	logFileMaxSizeMB  = 10
	logFileMaxBackups = 3
	histogramWidth    = 40
)

var (
	_ movementsensor.HeadingSensor = &recordingHeading{}
	_ movementsensor.Calibrator    = &recordingHeading{}
)

// recordingHeading passes heading reads through to the simulation and keeps every valid one.
type recordingHeading struct {
	*basefake.Drivetrain

	mu      sync.Mutex
	samples []float64
}

func (h *recordingHeading) Heading(ctx context.Context) (float64, error) {
	v, err := h.Drivetrain.Heading(ctx)
	if err == nil && movementsensor.ValidHeading(v) {
		h.mu.Lock()
		h.samples = append(h.samples, v)
		h.mu.Unlock()
	}
	return v, err
}

func (h *recordingHeading) Samples() []float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]float64{}, h.samples...)
}

type simulation struct {
	robot      *robot.Robot
	drivetrain *basefake.Drivetrain
	heading    *recordingHeading
	logger     logging.Logger
	logFile    *logging.FileAppender
}

func newSimulation(c *cli.Context) (*simulation, error) {
	logger := logging.NewLogger("drivesim")
	if c.Bool(generalFlagDebug) {
		logger.SetLevel(logging.DEBUG)
	} else {
		logger.SetLevel(logging.WARN)
	}
	var logFile *logging.FileAppender
	if path := c.String(generalFlagLogFile); path != "" {
		logFile = logging.NewFileAppender(path, logFileMaxSizeMB, logFileMaxBackups)
		logger.AddAppender(logFile)
	}

	cfg := config.Default()
	if path := c.String(generalFlagConfig); path != "" {
		read, err := config.Read(path, logger)
		if err != nil {
			return nil, err
		}
		cfg = *read
	}
	// simulated motors are not mounted mirrored
	cfg.Hardware.Inverted = nil

	dt := basefake.NewDrivetrain(basefake.DefaultTicksPerSpeed, basefake.DefaultDegreesPerSpeed)
	motors := map[string]motor.Motor{}
	drive := dt.Motors()
	for i, name := range cfg.Hardware.LeftDrive {
		motors[name] = drive[[]string{"left_front", "left_back"}[i%2]]
	}
	for i, name := range cfg.Hardware.RightDrive {
		motors[name] = drive[[]string{"right_front", "right_back"}[i%2]]
	}
	hw := cfg.Hardware
	for _, name := range []string{hw.LeftIntake, hw.RightIntake, hw.Lift, hw.Tray} {
		motors[name] = motorfake.NewMotor(name, 1)
	}
	sensors := map[string]sensor.Sensor{}
	for _, name := range []string{hw.RearUltrasonic, hw.FrontLimitSwitch} {
		if name != "" {
			sensors[name] = sensorfake.NewSensor(0)
		}
	}

	heading := &recordingHeading{Drivetrain: dt}
	r, err := robot.New(c.Context, robot.Dependencies{
		Motors:  motors,
		Heading: heading,
		Sensors: sensors,
	}, cfg, logger)
	if err != nil {
		if logFile != nil {
			//nolint:errcheck
			logFile.Close()
		}
		return nil, err
	}
	sim := &simulation{robot: r, drivetrain: dt, heading: heading, logger: logger, logFile: logFile}
	if err := r.Initialize(c.Context); err != nil {
		sim.close(c.Context)
		return nil, err
	}
	return sim, nil
}

func (s *simulation) close(ctx context.Context) {
	if err := s.robot.Close(ctx); err != nil {
		s.logger.Warnw("failed to stop simulation", "error", err)
	}
	if s.logFile != nil {
		if err := s.logFile.Close(); err != nil {
			printf(os.Stderr, "failed to close log file: %v", err)
		}
	}
}

func resultTable(res sensorcontrolled.Result) table.Writer {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Operation", res.OperationID.String()},
		{"Reached", res.Reached},
		{"Iterations", res.Iterations},
		{"Final error", fmt.Sprintf("%.3f", res.FinalError)},
		{"Elapsed", res.Elapsed.String()},
	})
	return t
}

// TurnAction runs a turn in simulation.
func TurnAction(c *cli.Context) error {
	sim, err := newSimulation(c)
	if err != nil {
		return err
	}
	defer sim.close(c.Context)

	degrees := c.Float64(simFlagDegrees)
	motion := sim.robot.Motion()
	var res sensorcontrolled.Result
	if c.Bool(simFlagRelative) {
		res, err = motion.TurnBy(c.Context, degrees)
	} else {
		res, err = motion.Turn(c.Context, degrees)
	}
	if err != nil {
		return errors.Wrap(err, "turn failed")
	}

	samples := sim.heading.Samples()
	target := degrees
	if c.Bool(simFlagRelative) && len(samples) > 0 {
		target = samples[0] + degrees
	}
	settled, overshoot, err := turnStats(samples, target)
	if err != nil {
		return err
	}

	t := resultTable(res)
	t.AppendRows([]table.Row{
		{"Target", fmt.Sprintf("%.3f", target)},
		{"Heading", fmt.Sprintf("%.3f", sim.drivetrain.TrueHeading())},
		{"Settled error", fmt.Sprintf("%.3f", settled)},
		{"Overshoot", fmt.Sprintf("%.3f", overshoot)},
		{"Cycles", sim.drivetrain.Cycles()},
	})
	printf(c.App.Writer, "%s", t.Render())
	return nil
}

// turnStats returns the mean absolute error over the last settleWindow samples and how far the
// heading went past target.
func turnStats(samples []float64, target float64) (float64, float64, error) {
	if len(samples) == 0 {
		return 0, 0, errors.New("no heading samples")
	}
	errs := make([]float64, 0, len(samples))
	past := make([]float64, 0, len(samples))
	direction := math.Copysign(1, target-samples[0])
	for _, h := range samples {
		errs = append(errs, math.Abs(target-h))
		past = append(past, math.Max(0, (h-target)*direction))
	}
	settled, err := stats.Mean(errs[max(0, len(errs)-settleWindow):])
	if err != nil {
		return 0, 0, err
	}
	overshoot, err := stats.Max(past)
	if err != nil {
		return 0, 0, err
	}
	return settled, overshoot, nil
}

// headingStats summarizes how far the heading strayed from where it started.
func headingStats(samples []float64) (mean, peak, stddev float64, err error) {
	if len(samples) == 0 {
		return 0, 0, 0, errors.New("no heading samples")
	}
	dev := make(stats.Float64Data, 0, len(samples))
	for _, h := range samples {
		dev = append(dev, math.Abs(h-samples[0]))
	}
	if mean, err = dev.Mean(); err != nil {
		return 0, 0, 0, err
	}
	if peak, err = dev.Max(); err != nil {
		return 0, 0, 0, err
	}
	if stddev, err = dev.StandardDeviation(); err != nil {
		return 0, 0, 0, err
	}
	return mean, peak, stddev, nil
}

func (s *simulation) driveTable(res sensorcontrolled.Result) (table.Writer, error) {
	mean, peak, stddev, err := headingStats(s.heading.Samples())
	if err != nil {
		return nil, err
	}
	pos, err := s.robot.Chassis().AveragePosition(context.Background())
	if err != nil {
		return nil, err
	}
	t := resultTable(res)
	t.AppendRows([]table.Row{
		{"Ticks", fmt.Sprintf("%.1f", pos)},
		{"Heading deviation mean", fmt.Sprintf("%.3f", mean)},
		{"Heading deviation max", fmt.Sprintf("%.3f", peak)},
		{"Heading deviation stddev", fmt.Sprintf("%.3f", stddev)},
		{"Final heading", fmt.Sprintf("%.3f", s.drivetrain.TrueHeading())},
	})
	return t, nil
}

// DriveAction drives a straight line in simulation.
func DriveAction(c *cli.Context) error {
	sim, err := newSimulation(c)
	if err != nil {
		return err
	}
	defer sim.close(c.Context)
	sim.drivetrain.Drift = c.Float64(simFlagDrift)

	res, err := sim.robot.Motion().DriveStraight(c.Context, c.Float64(simFlagDistance), c.Int(simFlagSpeed))
	if err != nil {
		return errors.Wrap(err, "drive failed")
	}
	t, err := sim.driveTable(res)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", t.Render())

	if bins := c.Int(simFlagHistogram); bins > 0 {
		printf(c.App.Writer, "heading samples")
		hist := histogram.Hist(bins, sim.heading.Samples())
		if err := histogram.Fprint(c.App.Writer, hist, histogram.Linear(histogramWidth)); err != nil {
			return errors.Wrap(err, "failed to print heading histogram")
		}
	}
	return nil
}

// ProfileAction prints the velocity profile of a move and optionally drives it.
func ProfileAction(c *cli.Context) error {
	sim, err := newSimulation(c)
	if err != nil {
		return err
	}
	defer sim.close(c.Context)

	distance := c.Float64(simFlagDistance)
	points := c.Int(simFlagPoints)
	if points < 2 {
		return errors.Errorf("--%s must be at least 2", simFlagPoints)
	}
	profile := sim.robot.Motion().Profile()
	target := profile.TargetTicks(distance)

	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("%v units, %.0f ticks, short=%v", distance, target, profile.IsShort(distance)))
	t.AppendHeader(table.Row{"#", "Ticks", "Speed"})
	for i := range points {
		ticks := target * float64(i) / float64(points-1)
		t.AppendRow(table.Row{i, fmt.Sprintf("%.1f", ticks), fmt.Sprintf("%.2f", profile.Speed(ticks, distance))})
	}
	printf(c.App.Writer, "%s", t.Render())

	if !c.Bool("run") {
		return nil
	}
	res, err := sim.robot.Motion().DriveProfiled(c.Context, distance)
	if err != nil {
		return errors.Wrap(err, "profiled drive failed")
	}
	dt, err := sim.driveTable(res)
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", dt.Render())
	return nil
}

// AutoAction runs an autonomous routine in simulation.
func AutoAction(c *cli.Context) error {
	sim, err := newSimulation(c)
	if err != nil {
		return err
	}
	defer sim.close(c.Context)

	routines := autonomous.Default()
	routine, err := routines.Lookup(c.String(simFlagRoutine))
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetTitle(routine.Name)
	t.AppendHeader(table.Row{"#", "Step"})
	for i, name := range routine.StepNames() {
		t.AppendRow(table.Row{i, name})
	}
	printf(c.App.Writer, "%s", t.Render())

	if err := sim.robot.RunAutonomous(c.Context, routines, routine.Name); err != nil {
		return err
	}
	printf(c.App.Writer, "finished at heading %.3f after %d cycles", sim.drivetrain.TrueHeading(), sim.drivetrain.Cycles())
	return nil
}

// SchemaAction prints the configuration JSON schema.
func SchemaAction(c *cli.Context) error {
	out, err := config.SchemaJSON()
	if err != nil {
		return err
	}
	printf(c.App.Writer, "%s", out)
	return nil
}
