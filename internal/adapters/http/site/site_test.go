package site_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/harkwise/userapp/internal/adapters/http/site"
	"github.com/harkwise/userapp/internal/adapters/http/visitor"
	service "github.com/harkwise/userapp/internal/app"
	"github.com/harkwise/userapp/internal/domain/feedback"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeBackend struct {
	mu       sync.Mutex
	payloads []feedback.Payload
	fail     error
}

func (b *fakeBackend) Post(_ context.Context, _ string, body any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.payloads = append(b.payloads, body.(feedback.Payload))
	return b.fail
}

func (b *fakeBackend) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.payloads)
}

// browser keeps the session cookie between requests.
type browser struct {
	h      http.Handler
	cookie *http.Cookie
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.send(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.send(req)
}

func (b *browser) send(req *http.Request) *httptest.ResponseRecorder {
	if b.cookie != nil {
		req.AddCookie(b.cookie)
	}
	w := httptest.NewRecorder()
	b.h.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		if ck.Name == visitor.DefaultCookieName {
			b.cookie = ck
		}
	}
	return w
}

func newSite(backend *fakeBackend) (*browser, *service.Service) {
	svc := service.New(service.WithPoster(backend))
	So(svc.Start(context.Background()), ShouldBeNil)
	h, err := site.NewHandler(svc, site.WithCookies(visitor.NewCookies(false)))
	So(err, ShouldBeNil)
	mux := http.NewServeMux()
	h.Register(context.Background(), mux)
	return &browser{h: mux}, svc
}

func TestLandingAndAssets(t *testing.T) {
	Convey("Given the site", t, func() {
		b, svc := newSite(&fakeBackend{})
		Reset(svc.Stop)

		Convey("When opening the root path", func() {
			w := b.get("/")

			Convey("Then the landing page is shown", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/html")
				body := w.Body.String()
				So(body, ShouldContainSubstring, "Harkwise User App")
				So(body, ShouldContainSubstring, "Quick and anonymous feedback in seconds")
				So(body, ShouldContainSubstring, "Scan a QR code to get started")
				So(body, ShouldContainSubstring, "Powered by Harkwise")
			})
		})

		Convey("When fetching the stylesheet", func() {
			w := b.get("/static/style.css")

			Convey("Then it is served from the embedded files", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "text/css")
			})
		})

		Convey("When fetching the logo", func() {
			So(b.get("/static/logo.svg").Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the browser asks for a favicon", func() {
			w := b.get("/favicon.ico")

			Convey("Then it is not treated as a location", func() {
				So(w.Code, ShouldEqual, http.StatusNoContent)
				So(svc.GetStats()["sessions"], ShouldEqual, 0)
			})
		})
	})
}

func TestFeedbackPage(t *testing.T) {
	Convey("Given a visitor opening coffee-shop", t, func() {
		backend := &fakeBackend{}
		b, svc := newSite(backend)
		Reset(svc.Stop)

		w := b.get("/coffee-shop")
		body := w.Body.String()

		Convey("Then the idle form is rendered", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			So(b.cookie, ShouldNotBeNil)
			So(body, ShouldContainSubstring, "Harkwise Feedback for coffee-shop")
			So(body, ShouldContainSubstring, "We value your opinion! Please rate your experience.")
			So(body, ShouldContainSubstring, "How was your experience?")
			So(body, ShouldContainSubstring, `aria-label="Rate 1 star"`)
			So(body, ShouldContainSubstring, `aria-label="Rate 5 stars"`)
			So(body, ShouldContainSubstring, `placeholder="Optional comment..."`)
			So(body, ShouldContainSubstring, `maxlength="500"`)
			So(body, ShouldContainSubstring, "0/500")
			So(body, ShouldContainSubstring, `class="button primary" disabled>Submit Feedback`)
			So(strings.Count(body, `class="star filled"`), ShouldEqual, 0)
		})

		Convey("When clicking the fifth star with a comment typed", func() {
			w := b.post("/coffee-shop/rate", url.Values{"rating": {"5"}, "comment": {"Excellent coffee!"}})

			Convey("Then the visitor is sent back to the page", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(w.Header().Get("Location"), ShouldEqual, "/coffee-shop")

				page := b.get("/coffee-shop").Body.String()
				So(strings.Count(page, `class="star filled"`), ShouldEqual, 5)
				So(page, ShouldContainSubstring, "Excellent coffee!</textarea>")
				So(page, ShouldContainSubstring, "17/500")
				So(page, ShouldContainSubstring, `class="button primary">Submit Feedback`)
			})

			Convey("And submitting", func() {
				w := b.post("/coffee-shop", url.Values{"comment": {"Excellent coffee!"}})
				So(w.Code, ShouldEqual, http.StatusSeeOther)

				Convey("Then the backend receives the payload and thanks are shown", func() {
					So(backend.count(), ShouldEqual, 1)
					So(backend.payloads[0].LocationID, ShouldEqual, "coffee-shop")
					So(backend.payloads[0].Rating, ShouldEqual, 5)
					So(backend.payloads[0].Comment, ShouldEqual, "Excellent coffee!")

					page := b.get("/coffee-shop").Body.String()
					So(page, ShouldContainSubstring, "Thank you for your feedback!")
					So(page, ShouldContainSubstring, "Your feedback helps us improve our service.")
					So(page, ShouldContainSubstring, "Submit New Feedback")
				})

				Convey("Then a second submit sends nothing", func() {
					b.post("/coffee-shop", url.Values{})
					So(backend.count(), ShouldEqual, 1)
				})

				Convey("Then Submit New Feedback restores an empty form", func() {
					w := b.post("/coffee-shop/reset", url.Values{})
					So(w.Code, ShouldEqual, http.StatusSeeOther)

					page := b.get("/coffee-shop").Body.String()
					So(page, ShouldContainSubstring, "How was your experience?")
					So(page, ShouldContainSubstring, "0/500")
					So(strings.Count(page, `class="star filled"`), ShouldEqual, 0)
				})
			})
		})

		Convey("When submitting without a rating", func() {
			b.post("/coffee-shop", url.Values{"comment": {"hello"}})

			Convey("Then the validation message shows and nothing is sent", func() {
				page := b.get("/coffee-shop").Body.String()
				So(page, ShouldContainSubstring, "Please select a rating before submitting")
				So(page, ShouldContainSubstring, "hello</textarea>")
				So(backend.count(), ShouldEqual, 0)
			})
		})

		Convey("When posting a non-numeric rating", func() {
			w := b.post("/coffee-shop/rate", url.Values{"rating": {"five"}})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the comment contains markup", func() {
			b.post("/coffee-shop/rate", url.Values{"rating": {"2"}, "comment": {"<script>alert(1)</script>"}})

			Convey("Then it is escaped", func() {
				page := b.get("/coffee-shop").Body.String()
				So(page, ShouldNotContainSubstring, "<script>alert(1)</script>")
				So(page, ShouldContainSubstring, "&lt;script&gt;")
			})
		})

		Convey("When moving on to another location", func() {
			b.post("/coffee-shop/rate", url.Values{"rating": {"4"}})
			page := b.get("/bakery").Body.String()

			Convey("Then the new form starts empty", func() {
				So(page, ShouldContainSubstring, "Harkwise Feedback for bakery")
				So(strings.Count(page, `class="star filled"`), ShouldEqual, 0)
			})
		})
	})
}

func TestTwoTabs(t *testing.T) {
	Convey("Given a visitor who rated coffee-shop with four stars", t, func() {
		backend := &fakeBackend{}
		b, svc := newSite(backend)
		Reset(svc.Stop)

		b.get("/coffee-shop")
		b.post("/coffee-shop/rate", url.Values{"rating": {"4"}})
		first := b.get("/coffee-shop").Body.String()

		Convey("Then the submit form carries the selected rating", func() {
			So(first, ShouldContainSubstring, `<input type="hidden" name="rating" value="4">`)
		})

		Convey("When bakery is opened in another tab and the first tab submits", func() {
			b.get("/bakery")
			w := b.post("/coffee-shop", url.Values{"rating": {"4"}, "comment": {"Good beans"}})

			Convey("Then the submission goes through with the rating shown", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				So(backend.count(), ShouldEqual, 1)
				So(backend.payloads[0].LocationID, ShouldEqual, "coffee-shop")
				So(backend.payloads[0].Rating, ShouldEqual, 4)
				So(backend.payloads[0].Comment, ShouldEqual, "Good beans")

				page := b.get("/coffee-shop").Body.String()
				So(page, ShouldNotContainSubstring, "Please select a rating before submitting")
				So(page, ShouldContainSubstring, "Thank you for your feedback!")
			})
		})

		Convey("When another star is clicked", func() {
			// The clicked star precedes the hidden field in form order.
			b.post("/coffee-shop/rate", url.Values{"rating": {"2", "4"}})

			Convey("Then the clicked star wins", func() {
				page := b.get("/coffee-shop").Body.String()
				So(strings.Count(page, `class="star filled"`), ShouldEqual, 2)
			})
		})

		Convey("When a star outside the control is posted", func() {
			w := b.post("/coffee-shop/rate", url.Values{"rating": {"9"}})

			Convey("Then the rating is kept", func() {
				So(w.Code, ShouldEqual, http.StatusSeeOther)
				page := b.get("/coffee-shop").Body.String()
				So(strings.Count(page, `class="star filled"`), ShouldEqual, 4)
			})
		})
	})
}

func TestFeedbackPageFailure(t *testing.T) {
	Convey("Given a failing backend", t, func() {
		backend := &fakeBackend{fail: errors.New("connection refused")}
		b, svc := newSite(backend)
		Reset(svc.Stop)

		b.post("/bakery", url.Values{"rating": {"4"}, "comment": {"Nice bread"}})
		page := b.get("/bakery").Body.String()

		Convey("Then the generic error shows and input is kept", func() {
			So(backend.count(), ShouldEqual, 1)
			So(page, ShouldContainSubstring, "Failed to submit feedback. Please try again.")
			So(page, ShouldContainSubstring, "Nice bread</textarea>")
			So(strings.Count(page, `class="star filled"`), ShouldEqual, 4)
			So(page, ShouldContainSubstring, `class="button primary">Submit Feedback`)
		})

		Convey("When the backend recovers and the visitor retries", func() {
			backend.mu.Lock()
			backend.fail = nil
			backend.mu.Unlock()
			b.post("/bakery", url.Values{})

			Convey("Then the retry succeeds", func() {
				So(backend.count(), ShouldEqual, 2)
				So(b.get("/bakery").Body.String(), ShouldContainSubstring, "Thank you for your feedback!")
			})
		})
	})
}

func TestLocationEscaping(t *testing.T) {
	Convey("Given a location with a space", t, func() {
		b, svc := newSite(&fakeBackend{})
		Reset(svc.Stop)

		Convey("Then the heading uses the decoded name and redirects keep it escaped", func() {
			So(b.get("/my%20cafe").Body.String(), ShouldContainSubstring, "Harkwise Feedback for my cafe")
			w := b.post("/my%20cafe/rate", url.Values{"rating": {"3"}})
			So(w.Header().Get("Location"), ShouldEqual, "/my%20cafe")
		})
	})
}

func TestBrandAndUnavailable(t *testing.T) {
	Convey("Given a custom brand", t, func() {
		svc := service.New(service.WithPoster(&fakeBackend{}))
		h, err := site.NewHandler(svc, site.WithBrand("Acme"))
		So(err, ShouldBeNil)
		mux := http.NewServeMux()
		h.Register(context.Background(), mux)
		b := &browser{h: mux}

		Convey("Then the landing page uses it", func() {
			body := b.get("/").Body.String()
			So(body, ShouldContainSubstring, "Acme User App")
			So(body, ShouldContainSubstring, "Powered by Acme")
		})

		Convey("Then form pages fail cleanly while the service is stopped", func() {
			So(b.get("/cafe").Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	Convey("Given a nil mux", t, func() {
		h, err := site.NewHandler(nil)
		So(err, ShouldBeNil)
		So(func() { h.Register(context.Background(), nil) }, ShouldPanic)
	})
}
