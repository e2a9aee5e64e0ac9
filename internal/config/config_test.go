package config_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/okian/teamrank/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_ValidateSheets(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.Convey("When the participants sheet looks like a team sheet", func() {
			cfg.ParticipantsSheet = "team_2"
			err := cfg.Validate()

			convey.Convey("Then it is rejected before any work is done", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "collides")
			})
		})

		convey.Convey("When the participants sheet only shares the prefix", func() {
			cfg.ParticipantsSheet = "Team_All"
			convey.So(cfg.Validate(), convey.ShouldBeNil)

			cfg.ParticipantsSheet = "Team_01"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the participants sheet is too long", func() {
			cfg.ParticipantsSheet = strings.Repeat("p", 32)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "participants_sheet")
		})

		convey.Convey("When the team prefix leaves no room for the team number", func() {
			cfg.TeamSheetPrefix = strings.Repeat("t", 28)
			err := cfg.Validate()
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "team_sheet_prefix")

			cfg.TeamSheetPrefix = strings.Repeat("t", 27)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When a sheet name has characters xlsx forbids", func() {
			cfg.TeamSheetPrefix = "Team/"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)

			cfg.TeamSheetPrefix = "Team_"
			cfg.ParticipantsSheet = "'All"
			convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}
