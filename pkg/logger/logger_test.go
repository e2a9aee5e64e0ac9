package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	Convey("Given the global logger", t, func() {
		Convey("When it is initialized with defaults", func() {
			err := Init()

			Convey("Then Get returns a usable logger", func() {
				So(err, ShouldBeNil)
				So(Get(), ShouldNotBeNil)
				So(Sync(), ShouldBeNil)
			})
		})
	})
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf)), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging an info message with fields", func() {
			Get().Info(ctx, "file loaded", String("file", "01.xlsx"), Int("rows", 12))

			Convey("Then the text line carries message, fields and source", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "file loaded")
				So(out, ShouldContainSubstring, "file=01.xlsx")
				So(out, ShouldContainSubstring, "rows=12")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When a named logger carries extra fields", func() {
			Named("loader").With(String("run_id", "r-1")).Warn(ctx, "skipped")

			Convey("Then component and run id are present", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "component=loader")
				So(out, ShouldContainSubstring, "run_id=r-1")
				So(out, ShouldContainSubstring, "level=WARN")
			})
		})

		Convey("When the level is raised to error", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Debug(ctx, "hidden too")

			Convey("Then lower levels are dropped", func() {
				So(buf.Len(), ShouldEqual, 0)
			})
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger", t, func() {
		var buf bytes.Buffer
		So(Init(WithWriter(&buf), WithJSON(true)), ShouldBeNil)

		Convey("When logging", func() {
			Get().Error(context.Background(), "boom", Strings("columns", []string{"A", "B"}))

			Convey("Then each line is valid JSON", func() {
				var line map[string]any
				err := json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &line)
				So(err, ShouldBeNil)
				So(line["msg"], ShouldEqual, "boom")
				So(line["level"], ShouldEqual, "ERROR")
			})
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		So(SetLevelString("debug"), ShouldBeNil)
		So(SetLevelString(" WARNING "), ShouldBeNil)
		So(SetLevelString(""), ShouldBeNil)
		So(SetLevelString("verbose"), ShouldNotBeNil)
	})
}
