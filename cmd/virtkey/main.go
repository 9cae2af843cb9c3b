// Command virtkey inspects the keyboard layout, translates keycodes and keysyms, types text, and serves the backend on D-Bus.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"github.com/jmigpin/virtkey"
	"github.com/jmigpin/virtkey/config"
	"github.com/jmigpin/virtkey/dbusservice"
	"github.com/jmigpin/virtkey/driver"
	"github.com/jmigpin/virtkey/driver/xdriver/xkb"
	"github.com/jmigpin/virtkey/keysym"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
)

// replaced in tests
var newVirtkey = driver.NewVirtkey

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "virtkey: %v\n", err)
		os.Exit(1)
	}
}

const modsUsage = "mods lock|latch|unlock|unlatch MASK"

type command struct {
	usage string
	fn    func(*cmdCtx, []string) error
}

var commands = map[string]command{
	"info":    {"info [--dump]", cmdInfo},
	"group":   {"group", cmdGroup},
	"keysym":  {"keysym KEYCODE [--mods MASK] [--group N]", cmdKeysym},
	"label":   {"label KEYCODE... [--mods MASK] [--group N]", cmdLabel},
	"keycode": {"keycode KEYSYM...", cmdKeycode},
	"type":    {"type TEXT...", cmdType},
	"mods":    {modsUsage, cmdMods},
	"serve":   {"serve", cmdServe},
}

type cmdCtx struct {
	w      io.Writer
	log    *logrus.Logger
	loader *config.Loader
	cfg    *config.Config

	vk virtkey.Virtkey
}

func (ctx *cmdCtx) open() (virtkey.Virtkey, error) {
	if ctx.vk == nil {
		vk, err := newVirtkey(ctx.cfg.Options(ctx.log))
		if err != nil {
			return nil, err
		}
		ctx.vk = vk
	}
	return ctx.vk, nil
}

func run(args []string, w io.Writer) error {
	f := flag.NewFlagSet("virtkey", flag.ContinueOnError)
	f.SetInterspersed(false)
	f.SetOutput(w)
	configPath := f.StringP("config", "c", config.Path(), "config file")
	display := f.String("display", "", "x display, overrides config and $DISPLAY")
	logLevel := f.String("log-level", "", "log level, overrides config")
	debug := f.BoolP("debug", "d", false, "same as --log-level=debug")
	f.Usage = func() {
		fmt.Fprintf(w, "usage: virtkey [flags] command [args]\n\ncommands:\n")
		for _, name := range sortedCommands() {
			fmt.Fprintf(w, "  %v\n", commands[name].usage)
		}
		fmt.Fprintf(w, "\nflags:\n%v", f.FlagUsages())
	}
	if err := f.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil
		}
		return err
	}
	if f.NArg() == 0 {
		f.Usage()
		return errors.New("missing command")
	}
	cmd, ok := commands[f.Arg(0)]
	if !ok {
		return errors.Errorf("unknown command: %q", f.Arg(0))
	}

	loader := config.NewLoader(*configPath)
	cfg, err := loader.Load()
	if err != nil {
		return errors.Wrap(err, "config")
	}
	if *display != "" {
		cfg.Display = *display
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *debug {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(cfg.Level())

	ctx := &cmdCtx{w: w, log: log, loader: loader, cfg: cfg}
	defer func() {
		if ctx.vk != nil {
			if err := ctx.vk.Close(); err != nil {
				log.WithError(err).Warn("close")
			}
		}
	}()
	return cmd.fn(ctx, f.Args()[1:])
}

func sortedCommands() []string {
	u := []string{}
	for k := range commands {
		u = append(u, k)
	}
	sort.Strings(u)
	return u
}

//----------

func cmdInfo(ctx *cmdCtx, args []string) error {
	f := flag.NewFlagSet("info", flag.ContinueOnError)
	dump := f.Bool("dump", false, "dump the keyboard description")
	if err := f.Parse(args); err != nil {
		return err
	}
	vk, err := ctx.open()
	if err != nil {
		return err
	}

	rn, err := vk.RulesNames()
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.w, "rules: %q\n", rn.Strings())

	sym, err := vk.LayoutSymbols()
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.w, "symbols: %v\n", sym)

	if err := printGroup(ctx.w, vk); err != nil {
		return err
	}

	if mx, ok := vk.(virtkey.ModifierIndexer); ok {
		mi, err := mx.ModifierIndices()
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.w, "modifiers: %v\n", mi)
	}

	if *dump {
		d, ok := vk.(describer)
		if !ok {
			return errors.New("backend has no description to dump")
		}
		cmap, names := d.Description()
		fmt.Fprint(ctx.w, d.KeysymTable())
		cfg := spew.ConfigState{Indent: "\t", DisableMethods: true, SortKeys: true}
		cfg.Fdump(ctx.w, names, cmap.Types)
	}
	return nil
}

// Implemented by the x backend.
type describer interface {
	KeysymTable() string
	Description() (*xkb.ClientMap, *xkb.GetNamesReply)
}

func cmdGroup(ctx *cmdCtx, args []string) error {
	vk, err := ctx.open()
	if err != nil {
		return err
	}
	return printGroup(ctx.w, vk)
}

func printGroup(w io.Writer, vk virtkey.Virtkey) error {
	g, err := vk.CurrentGroup()
	if err != nil {
		return err
	}
	name, err := vk.CurrentGroupName()
	if err != nil && !virtkey.Is(err, virtkey.ErrNoGroupNames) {
		return err
	}
	fmt.Fprintf(w, "group: %v %q\n", g, name)
	return nil
}

func cmdKeysym(ctx *cmdCtx, args []string) error {
	return translate(ctx, "keysym", args, func(vk virtkey.Virtkey, kc virtkey.Keycode, m virtkey.ModMask, g int) (string, error) {
		ks, err := vk.KeysymFromKeycode(kc, m, g)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%v %#x %v", kc, uint32(ks), ks), nil
	})
}

func cmdLabel(ctx *cmdCtx, args []string) error {
	return translate(ctx, "label", args, func(vk virtkey.Virtkey, kc virtkey.Keycode, m virtkey.ModMask, g int) (string, error) {
		s, err := vk.LabelFromKeycode(kc, m, g)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%v %q", kc, s), nil
	})
}

func translate(ctx *cmdCtx, name string, args []string, fn func(virtkey.Virtkey, virtkey.Keycode, virtkey.ModMask, int) (string, error)) error {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	mods := &modMaskValue{}
	f.VarP(mods, "mods", "m", "modifiers, ex: shift|altgr")
	group := f.IntP("group", "g", -1, "group, -1 for the current group")
	if err := f.Parse(args); err != nil {
		return err
	}
	if f.NArg() == 0 {
		return errors.New("missing keycode")
	}
	vk, err := ctx.open()
	if err != nil {
		return err
	}
	m, err := mods.resolve(vk)
	if err != nil {
		return err
	}
	g := *group
	if g < 0 {
		g, err = vk.CurrentGroup()
		if err != nil {
			return err
		}
	}
	for _, a := range f.Args() {
		kc, err := parseKeycode(a)
		if err != nil {
			return err
		}
		s, err := fn(vk, kc, m, g)
		if err != nil {
			return err
		}
		fmt.Fprintln(ctx.w, s)
	}
	return nil
}

func parseKeycode(s string) (virtkey.Keycode, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, errors.Wrapf(virtkey.ErrKeycodeRange, "%q", s)
	}
	return virtkey.Keycode(v), nil
}

func cmdKeycode(ctx *cmdCtx, args []string) error {
	if len(args) == 0 {
		return errors.New("missing keysym")
	}
	vk, err := ctx.open()
	if err != nil {
		return err
	}
	for _, a := range args {
		ks, err := keysym.Parse(a)
		if err != nil {
			return err
		}
		kc, mods, err := vk.KeycodeFromKeysym(ks)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.w, "%v %v %v\n", ks, kc, mods)
	}
	return nil
}

func cmdType(ctx *cmdCtx, args []string) error {
	if len(args) == 0 {
		return errors.New("missing text")
	}
	vk, err := ctx.open()
	if err != nil {
		return err
	}
	return virtkey.SendString(vk, strings.Join(args, " "))
}

func cmdMods(ctx *cmdCtx, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: " + modsUsage)
	}
	lock, press := false, false
	switch args[0] {
	case "lock":
		lock, press = true, true
	case "unlock":
		lock = true
	case "latch":
		press = true
	case "unlatch":
	default:
		return errors.Errorf("unknown action: %q", args[0])
	}
	vk, err := ctx.open()
	if err != nil {
		return err
	}
	m, err := virtkey.ParseModMaskFor(vk, args[1])
	if err != nil {
		return err
	}
	return vk.SetModifiers(m, lock, press)
}

//----------

func cmdServe(ctx *cmdCtx, args []string) error {
	vk, err := ctx.open()
	if err != nil {
		return err
	}

	srv := dbusservice.New(vk, ctx.log)
	if err := srv.Start(); err != nil {
		return err
	}
	defer srv.Close()

	ctx.loader.OnChange(func(cfg *config.Config) {
		ctx.log.SetLevel(cfg.Level())
		if err := vk.Reload(); err != nil {
			ctx.log.WithError(err).Error("reload")
			return
		}
		ctx.log.Info("config changed, keyboard reloaded")
	})
	if err := ctx.loader.Watch(); err != nil {
		ctx.log.WithError(err).Warn("config watch")
	}
	defer ctx.loader.Close()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	for {
		select {
		case sig := <-sigs:
			ctx.log.WithField("signal", sig).Info("exiting")
			return nil
		case err := <-ctx.loader.Errors():
			ctx.log.WithError(err).Warn("config")
		}
	}
}
