package intake_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/JaimeStill/warranty/internal/intake"
	"github.com/JaimeStill/warranty/internal/warranty"
	"github.com/JaimeStill/warranty/pkg/formdata"
)

func respond(status int, result warranty.Result) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(result)
	}
}

func newClient(t *testing.T, h http.Handler, store intake.Store) (*intake.Client, *intake.Draft) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	d := intake.NewDraft(store, nil, discard())
	c := intake.NewClient(intake.ClientConfig{Endpoint: srv.URL, Timeout: 5 * time.Second}, d, nil, discard())
	return c, d
}

func sampleForm(t *testing.T) intake.Form {
	t.Helper()
	return intake.Form{
		Fields: map[string]string{
			"fecha":   "2024-01-01",
			"cliente": "Acme",
			"email":   "a@b.com",
			"extra":   "x",
		},
		Photos: []intake.Photo{
			{Slot: "fotoDetalle", Filename: "detalle.jpg", ContentType: "image/jpeg", Data: encodeJPEG(t, noise(16, 16))},
		},
	}
}

func TestClientSubmitSuccess(t *testing.T) {
	var received *formdata.Request
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := formdata.Parse(r.Context(), r.Body, r.Header.Get("Content-Type"))
		if err != nil {
			t.Errorf("parse upload: %v", err)
		}
		received = req
		respond(http.StatusOK, warranty.Succeeded())(w, r)
	})

	store := newMemStore()
	c, d := newClient(t, h, store)
	form := sampleForm(t)
	d.Save(form.Fields)

	res, err := c.Submit(context.Background(), form)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if res.Message != warranty.SuccessMessage {
		t.Errorf("message: got %s", res.Message)
	}
	if c.Machine().State() != intake.Confirmed {
		t.Errorf("state: got %s, want confirmed", c.Machine().State())
	}
	if len(store.values) != 0 {
		t.Errorf("draft should be cleared, got %+v", store.values)
	}

	if received.Field("cliente") != "Acme" || received.Field("extra") != "x" {
		t.Errorf("fields: got %+v", received.Fields)
	}
	f, ok := received.File("fotoDetalle")
	if !ok || f.Filename != "detalle.jpg" || f.ContentType != "image/jpeg" {
		t.Errorf("photo: got %+v", f)
	}
}

func TestClientSubmitFailure(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		status  int
		message string
	}{
		{
			name:    "server message",
			handler: respond(http.StatusInternalServerError, warranty.Result{Message: "Error en el servidor: dispatching: rejected"}),
			status:  http.StatusInternalServerError,
			message: "Error en el servidor: dispatching: rejected",
		},
		{
			name:    "empty message",
			handler: respond(http.StatusInternalServerError, warranty.Result{}),
			status:  http.StatusInternalServerError,
			message: intake.UnknownServerError,
		},
		{
			name: "non-json body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "bad gateway", http.StatusBadGateway)
			},
			status:  http.StatusBadGateway,
			message: intake.UnknownServerError,
		},
		{
			name:    "ok status without success",
			handler: respond(http.StatusOK, warranty.Result{Message: "rechazada"}),
			status:  http.StatusOK,
			message: "rechazada",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			c, d := newClient(t, tt.handler, store)
			form := sampleForm(t)
			d.Save(form.Fields)

			_, err := c.Submit(context.Background(), form)

			var se *intake.SubmitError
			if !errors.As(err, &se) {
				t.Fatalf("expected *SubmitError, got %v", err)
			}
			if se.Status != tt.status {
				t.Errorf("status: got %d, want %d", se.Status, tt.status)
			}
			if se.Message != tt.message {
				t.Errorf("message: got %q, want %q", se.Message, tt.message)
			}
			if c.Machine().State() != intake.Failed {
				t.Errorf("state: got %s, want failed", c.Machine().State())
			}
			if store.values["cliente"] != "Acme" {
				t.Error("draft should be kept after failure")
			}
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	d := intake.NewDraft(newMemStore(), nil, discard())
	c := intake.NewClient(intake.ClientConfig{Endpoint: endpoint, Timeout: time.Second}, d, nil, discard())

	_, err := c.Submit(context.Background(), sampleForm(t))
	var se *intake.SubmitError
	if !errors.As(err, &se) || se.Message == "" {
		t.Fatalf("expected *SubmitError with message, got %v", err)
	}
	if c.Machine().State() != intake.Failed {
		t.Errorf("state: got %s", c.Machine().State())
	}

	if err := c.Machine().Fire(intake.Retry); err != nil {
		t.Errorf("retry: %v", err)
	}
}

func TestClientSubmitWhileSubmitting(t *testing.T) {
	machine := intake.NewMachine()
	machine.Fire(intake.Submit)

	d := intake.NewDraft(newMemStore(), nil, discard())
	c := intake.NewClient(intake.ClientConfig{Endpoint: "http://127.0.0.1:0"}, d, machine, discard())

	if _, err := c.Submit(context.Background(), sampleForm(t)); !errors.Is(err, intake.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestClientCompress(t *testing.T) {
	var size int
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, err := formdata.Parse(r.Context(), r.Body, r.Header.Get("Content-Type"))
		if err == nil {
			f, _ := req.File("fotoEtiqueta")
			size = len(f.Content)
		}
		respond(http.StatusOK, warranty.Succeeded())(w, r)
	})
	srv := httptest.NewServer(h)
	defer srv.Close()

	cfg := intake.ClientConfig{
		Endpoint:    srv.URL,
		Compress:    true,
		Compression: intake.CompressOptions{MaxSizeMB: 0.05, MaxWidthOrHeight: 200},
	}
	c := intake.NewClient(cfg, intake.NewDraft(newMemStore(), nil, discard()), nil, discard())

	form := intake.Form{
		Fields: map[string]string{"cliente": "Acme"},
		Photos: []intake.Photo{{Slot: "fotoEtiqueta", Filename: "e.png", Data: encodePNG(t, noise(500, 500))}},
	}
	if _, err := c.Submit(context.Background(), form); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if size == 0 || size > 52428 {
		t.Errorf("uploaded size: got %d", size)
	}
}

func TestClientReset(t *testing.T) {
	store := newMemStore()
	c, d := newClient(t, respond(http.StatusOK, warranty.Succeeded()), store)
	d.Save(map[string]string{"cliente": "Acme"})

	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if len(store.values) != 0 {
		t.Errorf("reset should clear draft, got %+v", store.values)
	}
	if c.Machine().State() != intake.Editing {
		t.Errorf("state: got %s", c.Machine().State())
	}
}

func TestClientResetWhileSubmitting(t *testing.T) {
	machine := intake.NewMachine()
	machine.Fire(intake.Submit)

	store := newMemStore()
	d := intake.NewDraft(store, nil, discard())
	d.Save(map[string]string{"cliente": "Acme"})
	c := intake.NewClient(intake.ClientConfig{Endpoint: "http://127.0.0.1:0"}, d, machine, discard())

	if err := c.Reset(); !errors.Is(err, intake.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if store.values["cliente"] != "Acme" {
		t.Errorf("refused reset should keep draft, got %+v", store.values)
	}
	if machine.State() != intake.Submitting {
		t.Errorf("state: got %s", machine.State())
	}
}
