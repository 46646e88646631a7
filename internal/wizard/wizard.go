// Package wizard interactively builds a run configuration on first start.
package wizard

import (
	"fmt"
	"io"
	"time"

	"github.com/theclicker/theclicker/internal/config"
	"github.com/theclicker/theclicker/internal/device"
)

const (
	// KeyReleaseWait gives the user time to release the key that answered the
	// previous question before capture starts.
	KeyReleaseWait = 100 * time.Millisecond

	// MinCooldown is the lowest cooldown the wizard accepts. The kernel
	// drops events from a device beyond about 40 per second.
	MinCooldown = 25
)

// KeyDevice is an input device a key can be captured from.
type KeyDevice interface {
	Grab(grab bool) error
	WaitKeyPress(since time.Time) (uint16, error)
	Close() error
}

// Devices lists and opens input devices.
type Devices interface {
	List() ([]device.Info, error)
	Open(info device.Info) (KeyDevice, error)
}

// System is the Devices implementation backed by /dev/input.
type System struct{}

func (System) List() ([]device.Info, error) {
	return device.List()
}

func (System) Open(info device.Info) (KeyDevice, error) {
	in, err := device.OpenInput(info)
	if err != nil {
		return nil, err
	}
	return in, nil
}

// Result is the outcome of a wizard session. Exactly one of Run and Legacy
// is set.
type Result struct {
	Run    *config.Run
	Legacy *config.Legacy
}

// Wizard walks the user through the device and binding choices.
type Wizard struct {
	prompt  *Prompter
	devices Devices
	sleep   func(time.Duration)
	now     func() time.Time
}

func New(in io.Reader, out io.Writer, devices Devices) *Wizard {
	return &Wizard{
		prompt:  NewPrompter(in, out),
		devices: devices,
		sleep:   time.Sleep,
		now:     time.Now,
	}
}

// Configure runs the interactive session. Choosing a blacklisted key ends it
// with a *device.ExitError.
func (w *Wizard) Configure() (Result, error) {
	info, err := w.selectDevice("Select device")
	if err != nil {
		return Result{}, err
	}
	w.prompt.Printf("Device name: %s\n", info.Name)

	if info.Legacy() {
		w.prompt.Printf("%sUsing legacy interface for PS/2 device%s\n", styleRed, styleReset)
		legacy, err := w.configureLegacy(info)
		if err != nil {
			return Result{}, err
		}
		return Result{Legacy: legacy}, nil
	}

	run, err := w.configureRun(info)
	if err != nil {
		return Result{}, err
	}
	return Result{Run: run}, nil
}

func (w *Wizard) selectDevice(question string) (device.Info, error) {
	devices, err := w.devices.List()
	if err != nil {
		return device.Info{}, fmt.Errorf("cannot list input devices: %w", err)
	}
	if len(devices) == 0 {
		return device.Info{}, fmt.Errorf("no input devices found, check the permissions of /dev/input")
	}
	options := make([]string, len(devices))
	for i, d := range devices {
		options[i] = fmt.Sprintf("%s (%s)", d.Name, d.Path)
	}
	idx, err := w.prompt.Choose(question, options)
	if err != nil {
		return device.Info{}, err
	}
	return devices[idx], nil
}

func (w *Wizard) configureLegacy(info device.Info) (*config.Legacy, error) {
	cooldown, err := w.prompt.Number(fmt.Sprintf("Choose cooldown, the min is %d", MinCooldown), MinCooldown)
	if err != nil {
		return nil, err
	}
	pressRelease, err := w.prompt.Number("Choose cooldown between press and release", 0)
	if err != nil {
		return nil, err
	}
	return &config.Legacy{
		Common:               config.Common{Command: config.CommandRunLegacy},
		Device:               info.Path,
		Cooldown:             cooldown,
		CooldownPressRelease: pressRelease,
	}, nil
}

func (w *Wizard) configureRun(info device.Info) (*config.Run, error) {
	dev, err := w.devices.Open(info)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	run := &config.Run{
		Common: config.Common{Command: config.CommandRun},
		Device: info.Path,
	}

	lockMode, err := w.prompt.YesNo("Lock Unlock mode, useful for mouse without side buttons", false)
	if err != nil {
		return nil, err
	}
	if lockMode {
		code, err := w.chooseKey(dev, "lock_unlock_bind")
		if err != nil {
			return nil, err
		}
		run.LockUnlockBind = &code
	}

	if err := w.configureOverride(run); err != nil {
		return nil, err
	}

	if run.LeftBind, err = w.chooseKey(dev, "left_bind"); err != nil {
		return nil, err
	}
	if run.RightBind, err = w.chooseKey(dev, "right_bind"); err != nil {
		return nil, err
	}

	if run.Hold, err = w.prompt.YesNo("You want to hold the bind / active hold_mode?", true); err != nil {
		return nil, err
	}

	w.prompt.Warnf("Warning: if you enable grab mode you can get softlocked if the compositor does not use the %s device.", device.OutputName)
	w.prompt.Printf("If the device input is grabbed, it is emulated by %s and pressed bindings are not sent.\n", device.OutputName)
	if run.Grab, err = w.prompt.YesNo("You want to grab the input device?", true); err != nil {
		return nil, err
	}
	w.prompt.Printf("Grab: %t\n", run.Grab)

	cooldown, err := w.prompt.Number(fmt.Sprintf("Choose cooldown, the min is %d", MinCooldown), MinCooldown)
	if err != nil {
		return nil, err
	}
	if cooldown < MinCooldown {
		cooldown = MinCooldown
		w.prompt.Printf("%sThe cooldown was set to %s%d%s\n", styleBold, styleGreen, MinCooldown, styleReset)
		w.prompt.Warnf("The linux kernel does not permit more than 40 events from a device per second!")
		w.prompt.Printf("If your kernel permits that, you can bypass this dialog using the command args and modify the -c argument.\n")
	}
	run.Cooldown = cooldown

	if run.CooldownPressRelease, err = w.prompt.Number("Choose cooldown between press and release", 0); err != nil {
		return nil, err
	}

	w.sleep(KeyReleaseWait)
	return run, nil
}

func (w *Wizard) configureOverride(run *config.Run) error {
	enable, err := w.prompt.YesNo("Do you want to establish an 'override' device with specific keys that pause autoclicking?", false)
	if err != nil || !enable {
		return err
	}

	w.prompt.Printf("Select override device (keyboard recommended):\n")
	info, err := w.selectDevice("Select override device")
	if err != nil {
		return err
	}
	if info.Legacy() {
		return fmt.Errorf("%s is a legacy device and cannot be used as override device", info.Path)
	}
	dev, err := w.devices.Open(info)
	if err != nil {
		return err
	}
	defer dev.Close()
	w.prompt.Printf("Override device selected: %s\n", info.Name)
	run.OverrideDevice = info.Path

	w.prompt.Printf("Now configure which keys will pause the autoclicker when pressed.\n")
	w.prompt.Printf("Common choices: Escape (1), F1 (59), F12 (88), Space (57)\n")
	for {
		w.prompt.Printf("Press a key on the override device to add it as an override key:\n")
		code, err := w.chooseKey(dev, "override_key")
		if err != nil {
			return err
		}
		run.OverrideKey = append(run.OverrideKey, code)
		w.prompt.Printf("Added override key: %s\n", device.FormatCode(code))

		more, err := w.prompt.YesNo("Add another override key?", false)
		if err != nil {
			return err
		}
		if !more {
			break
		}
	}
	w.prompt.Printf("Override keys configured: %v\n", run.OverrideKey)
	return nil
}

// chooseKey captures one key press from dev while holding a grab so the
// press does not reach other programs.
func (w *Wizard) chooseKey(dev KeyDevice, name string) (uint16, error) {
	w.sleep(KeyReleaseWait)
	w.prompt.Warnf("Waiting for key presses from the selected device")
	for {
		_ = dev.Grab(true)
		since := w.now()
		w.prompt.Printf("Choose key for %s:\n", name)
		code, err := dev.WaitKeyPress(since)
		_ = dev.Grab(false)
		if err != nil {
			return 0, err
		}

		w.prompt.Printf("\t%s\n", device.FormatCode(code))
		if device.Blacklisted(code) {
			return 0, &device.ExitError{
				Code: device.ExitBlacklistedCode,
				Err:  fmt.Errorf("key %s is blacklisted", device.FormatCode(code)),
			}
		}

		ok, err := w.prompt.YesNo("You want to choose this", true)
		if err != nil {
			return 0, err
		}
		if ok {
			return code, nil
		}
	}
}
