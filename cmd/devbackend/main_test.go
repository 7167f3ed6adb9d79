package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/harkwise/userapp/internal/loadgen"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCommands(t *testing.T) {
	Convey("Given the root command", t, func() {
		Convey("Then serve and simulate are registered", func() {
			names := []string{}
			for _, c := range rootCmd.Commands() {
				names = append(names, c.Name())
			}
			So(names, ShouldContain, "serve")
			So(names, ShouldContain, "simulate")
		})

		Convey("Then serve flags carry the documented defaults", func() {
			cmd := newServeCmd()
			addr, err := cmd.Flags().GetString("addr")
			So(err, ShouldBeNil)
			So(addr, ShouldEqual, ":9090")
			rate, err := cmd.Flags().GetFloat64("fail-rate")
			So(err, ShouldBeNil)
			So(rate, ShouldEqual, 0)
			latency, err := cmd.Flags().GetDuration("latency")
			So(err, ShouldBeNil)
			So(latency, ShouldEqual, time.Duration(0))
		})

		Convey("Then serve rejects positional arguments", func() {
			cmd := newServeCmd()
			So(cmd.Args(cmd, []string{"extra"}), ShouldNotBeNil)
		})
	})
}

func TestPrintSummary(t *testing.T) {
	Convey("Given run stats", t, func() {
		var buf bytes.Buffer
		printSummary(&buf, loadgen.Stats{
			Visitors:  3,
			Succeeded: 2,
			Failed:    1,
			ByRating:  map[int]int{5: 1, 2: 1},
			Verified:  true,
		})

		Convey("Then the summary lists outcomes and ratings in order", func() {
			out := buf.String()
			So(out, ShouldContainSubstring, "succeeded: 2")
			So(out, ShouldContainSubstring, "failed:    1")
			So(out, ShouldContainSubstring, "backend tally verified")
			So(bytes.Index(buf.Bytes(), []byte("2 stars")), ShouldBeLessThan, bytes.Index(buf.Bytes(), []byte("5 stars")))
		})
	})
}
