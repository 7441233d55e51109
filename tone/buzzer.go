package tone

import (
	"context"

	"github.com/pkg/errors"
	"go.viam.com/rdk/components/generic"
	"go.viam.com/rdk/logging"
	"go.viam.com/rdk/operation"
	"go.viam.com/rdk/resource"

	pwmutils "raspberry-pi-softpwm/utils"
)

// Model is the model for a buzzer driven by a square wave.
var Model = pwmutils.SoftPWMFamily.WithModel("buzzer")

// Config is the config for a buzzer.
type Config struct {
	BoardName string `json:"board"`
	Pin       string `json:"pin"`
}

// Validate ensures all parts of the config are valid.
func (conf *Config) Validate(path string) ([]string, []string, error) {
	return pwmutils.ValidateBoardPin(path, conf.BoardName, conf.Pin)
}

func init() {
	resource.RegisterComponent(
		generic.API,
		Model,
		resource.Registration[resource.Resource, *Config]{
			Constructor: newBuzzer,
		})
}

type buzzer struct {
	resource.Named
	resource.AlwaysRebuild
	gen   *Generator
	opMgr *operation.SingleOperationManager
}

func newBuzzer(
	ctx context.Context,
	deps resource.Dependencies,
	conf resource.Config,
	logger logging.Logger,
) (resource.Resource, error) {
	newConf, err := resource.NativeConfig[*Config](conf)
	if err != nil {
		return nil, err
	}
	b, err := pwmutils.BoardFromDependencies(deps, newConf.BoardName)
	if err != nil {
		return nil, err
	}
	pwmutils.WarnHardwarePWMConflicts(pwmutils.GetBootConfigPath(), []string{newConf.Pin}, logger)
	return newBuzzerWithDriver(ctx, conf.ResourceName(), newConf.Pin, pwmutils.NewBoardDriver(b), logger)
}

func newBuzzerWithDriver(
	ctx context.Context,
	name resource.Name,
	pin string,
	driver pwmutils.DigitalDriver,
	logger logging.Logger,
) (*buzzer, error) {
	gen, err := NewGenerator(ctx, driver, pin, logger)
	if err != nil {
		return nil, err
	}
	return &buzzer{
		Named: name.AsNamed(),
		gen:   gen,
		opMgr: operation.NewSingleOperationManager(),
	}, nil
}

// DoCommand understands:
//
//	{"tone": {"frequency_hz": 440, "duration_ms": 500}}
//	{"play": [{"frequency_hz": 440, "duration_ms": 250}, {"frequency_hz": 0, "duration_ms": 100}]}
//	{"no_tone": true}
//
// A new command cancels a tone that is still playing.
func (b *buzzer) DoCommand(ctx context.Context, cmd map[string]interface{}) (map[string]interface{}, error) {
	ctx, done := b.opMgr.New(ctx)
	defer done()

	if _, ok := cmd["no_tone"]; ok {
		return map[string]interface{}{}, b.gen.NoTone(ctx)
	}
	if raw, ok := cmd["tone"]; ok {
		note, err := parseNote(raw)
		if err != nil {
			return nil, errors.Wrap(err, "tone")
		}
		return map[string]interface{}{}, b.gen.Tone(ctx, note.FrequencyHz, note.DurationMs)
	}
	if raw, ok := cmd["play"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return nil, pwmutils.InvalidArgumentf("play expects a list of notes, got %T", raw)
		}
		notes := make([]Note, 0, len(list))
		for i, item := range list {
			note, err := parseNote(item)
			if err != nil {
				return nil, errors.Wrapf(err, "play note %d", i)
			}
			notes = append(notes, note)
		}
		return map[string]interface{}{"notes": len(notes)}, b.gen.Play(ctx, notes)
	}
	return nil, errors.Errorf("no known command in %v", cmd)
}

func parseNote(raw interface{}) (Note, error) {
	args, err := pwmutils.ArgsMap(raw)
	if err != nil {
		return Note{}, err
	}
	freqRaw, ok := args["frequency_hz"]
	if !ok {
		return Note{}, pwmutils.InvalidArgumentf("missing frequency_hz")
	}
	freq, err := pwmutils.ToFloat(freqRaw)
	if err != nil {
		return Note{}, err
	}
	durRaw, ok := args["duration_ms"]
	if !ok {
		return Note{}, pwmutils.InvalidArgumentf("missing duration_ms")
	}
	dur, err := pwmutils.ToInt(durRaw)
	if err != nil {
		return Note{}, err
	}
	return Note{FrequencyHz: freq, DurationMs: dur}, nil
}

// Close silences the buzzer.
func (b *buzzer) Close(ctx context.Context) error {
	b.opMgr.CancelRunning(ctx)
	return b.gen.Close(ctx)
}
