// Command intake fills, submits and resets a warranty claim from the
// terminal. Field values persist in a local draft file between runs.
//
//	intake set cliente="Acme S.A." fecha=2024-01-01
//	intake show
//	intake submit -photo fotoDetalle=detalle.jpg
//	intake reset
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/warranty/internal/intake"
	"github.com/JaimeStill/warranty/internal/warranty"
)

const (
	envEndpoint     = "WARRANTY_INTAKE_ENDPOINT"
	envDraft        = "WARRANTY_INTAKE_DRAFT"
	defaultEndpoint = "http://localhost:8080/api/warranty"
	defaultDraft    = "warranty-draft.json"
)

type photoFlags []string

func (p *photoFlags) String() string     { return strings.Join(*p, ",") }
func (p *photoFlags) Set(v string) error { *p = append(*p, v); return nil }

func main() {
	var (
		endpoint = flag.String("endpoint", "", "Claim endpoint URL")
		draft    = flag.String("draft", "", "Draft file path")
		timeout  = flag.Duration("timeout", 2*time.Minute, "Request timeout")
		verbose  = flag.Bool("v", false, "Verbose logging")
	)
	flag.Usage = usage
	flag.Parse()

	if *endpoint == "" {
		*endpoint = env(envEndpoint, defaultEndpoint)
	}
	if *draft == "" {
		*draft = env(envDraft, defaultDraft)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store := intake.NewFileStore(*draft)
	d := intake.NewDraft(store, nil, logger)

	machine := intake.NewMachine()
	machine.Subscribe(func(c intake.Change) {
		logger.Debug("state", "from", c.From, "to", c.To, "event", c.Event)
	})

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "set":
		set(d, args[1:])
	case "show":
		show(d)
	case "submit":
		cfg := intake.ClientConfig{Endpoint: *endpoint, Timeout: *timeout}
		os.Exit(submit(cfg, d, machine, logger, args[1:]))
	case "reset":
		client := intake.NewClient(intake.ClientConfig{Endpoint: *endpoint}, d, machine, logger)
		if err := client.Reset(); err != nil {
			log.Fatalf("reset failed: %v", err)
		}
		fmt.Println("draft cleared")
	default:
		usage()
		os.Exit(2)
	}
}

func set(d *intake.Draft, args []string) {
	fields := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			log.Fatalf("invalid assignment %q: expected field=value", arg)
		}
		if !slices.Contains(d.Keys(), key) {
			log.Fatalf("unknown field %q (fields: %s)", key, strings.Join(d.Keys(), ", "))
		}
		fields[key] = value
	}
	d.Save(fields)
}

func show(d *intake.Draft) {
	fields := make(map[string]string)
	d.Load(fields)
	for _, key := range d.Keys() {
		fmt.Printf("%-18s %s\n", key+":", fields[key])
	}
}

func submit(cfg intake.ClientConfig, d *intake.Draft, machine *intake.Machine, logger *slog.Logger, args []string) int {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	var photos photoFlags
	fs.Var(&photos, "photo", "Photo as slot=path (repeatable)")
	compress := fs.Bool("compress", true, "Compress photos before upload")
	fs.Parse(args)

	form := intake.Form{Fields: make(map[string]string)}
	d.Load(form.Fields)

	for _, arg := range photos {
		p, err := loadPhoto(arg)
		if err != nil {
			log.Printf("photo %s: %v", arg, err)
			return 1
		}
		form.Photos = append(form.Photos, p)
	}

	cfg.Compress = *compress
	client := intake.NewClient(cfg, d, machine, logger)

	result, err := client.Submit(context.Background(), form)
	if err != nil {
		var se *intake.SubmitError
		if errors.As(err, &se) {
			fmt.Fprintln(os.Stderr, se.Message)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}

	fmt.Println(result.Message)
	return 0
}

func loadPhoto(arg string) (intake.Photo, error) {
	slot, path, ok := strings.Cut(arg, "=")
	if !ok {
		return intake.Photo{}, fmt.Errorf("expected slot=path")
	}
	if !slices.Contains(warranty.Slots, slot) {
		return intake.Photo{}, fmt.Errorf("unknown slot %q (slots: %s)", slot, strings.Join(warranty.Slots, ", "))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return intake.Photo{}, err
	}

	return intake.Photo{
		Slot:        slot,
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}, nil
}

func env(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: intake [flags] set field=value... | show | submit [-photo slot=path]... [-compress=false] | reset\n\n")
	flag.PrintDefaults()
}
