package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/harkwise/userapp/internal/domain/feedback"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNew(t *testing.T) {
	Convey("Given base URLs", t, func() {
		Convey("Then absolute http(s) URLs are accepted", func() {
			c, err := New("https://api.harkwise.test/")
			So(err, ShouldBeNil)
			So(c.endpoint("/api/v1/feedback"), ShouldEqual, "https://api.harkwise.test/api/v1/feedback")
		})

		Convey("Then relative or non-http URLs are rejected", func() {
			for _, raw := range []string{"", "/api", "ftp://x", "://bad"} {
				_, err := New(raw)
				So(errors.Is(err, ErrConfig), ShouldBeTrue)
			}
		})
	})
}

func TestPost(t *testing.T) {
	payload := feedback.Payload{LocationID: "coffee-shop", Rating: 5, SubmittedAt: "2026-10-18T09:00:00.000Z"}

	Convey("Given a backend that accepts feedback", t, func() {
		var gotPath, gotType string
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotType = r.Header.Get("Content-Type")
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"status":"received"}`))
		}))
		Reset(srv.Close)

		c, err := New(srv.URL, WithHTTPClient(srv.Client()))
		So(err, ShouldBeNil)

		Convey("When posting a payload", func() {
			err := c.Post(context.Background(), feedback.SubmitPath, payload)

			Convey("Then the JSON body reaches the path", func() {
				So(err, ShouldBeNil)
				So(gotPath, ShouldEqual, "/api/v1/feedback")
				So(gotType, ShouldEqual, "application/json")
				So(got["locationId"], ShouldEqual, "coffee-shop")
				_, hasComment := got["comment"]
				So(hasComment, ShouldBeFalse)
			})
		})
	})

	Convey("Given a backend that fails", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "database down", http.StatusInternalServerError)
		}))
		Reset(srv.Close)

		c, err := New(srv.URL, WithHTTPClient(srv.Client()))
		So(err, ShouldBeNil)

		Convey("Then a non-2xx status becomes ErrSubmit", func() {
			err := c.Post(context.Background(), feedback.SubmitPath, payload)
			So(errors.Is(err, ErrSubmit), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "500")
		})
	})

	Convey("Given a backend slower than the timeout", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		Reset(srv.Close)

		c, err := New(srv.URL, WithHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond))
		So(err, ShouldBeNil)

		Convey("Then the call times out as ErrSubmit", func() {
			err := c.Post(context.Background(), feedback.SubmitPath, payload)
			So(errors.Is(err, ErrSubmit), ShouldBeTrue)
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
		})
	})

	Convey("Given an unreachable backend", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		c, err := New(addr)
		So(err, ShouldBeNil)

		Convey("Then the transport error becomes ErrSubmit", func() {
			err := c.Post(context.Background(), feedback.SubmitPath, payload)
			So(errors.Is(err, ErrSubmit), ShouldBeTrue)
		})
	})

	Convey("Given a body that cannot be marshaled", t, func() {
		c, err := New("http://localhost:1")
		So(err, ShouldBeNil)

		Convey("Then Post fails before sending", func() {
			err := c.Post(context.Background(), feedback.SubmitPath, map[string]any{"bad": make(chan int)})
			So(errors.Is(err, ErrSubmit), ShouldBeTrue)
		})
	})
}
