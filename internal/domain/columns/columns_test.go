package columns_test

import (
	"errors"
	"testing"

	"github.com/okian/teamrank/internal/domain/columns"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolver(t *testing.T) {
	Convey("Given a resolver with the usual aliases", t, func() {
		r := columns.NewResolver(
			[]string{"Username", "Team", "Handle"},
			[]string{"Rank", "Position"},
		)

		Convey("When headers differ only in case and padding", func() {
			m, err := r.Resolve([]string{"  RANK ", "penalty", "team"})

			Convey("Then both roles are found", func() {
				So(err, ShouldBeNil)
				So(m.Rank, ShouldEqual, 0)
				So(m.Identifier, ShouldEqual, 2)
			})
		})

		Convey("When two columns match the same role", func() {
			m, err := r.Resolve([]string{"Handle", "Username", "Position", "Rank"})

			Convey("Then the first one wins", func() {
				So(err, ShouldBeNil)
				So(m.Identifier, ShouldEqual, 0)
				So(m.Rank, ShouldEqual, 2)
			})
		})

		Convey("When the rank column is missing", func() {
			_, err := r.Resolve([]string{"Team", "Score"})

			Convey("Then a schema error lists the columns found", func() {
				So(errors.Is(err, columns.ErrSchemaMismatch), ShouldBeTrue)
				var se *columns.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Missing, ShouldResemble, []columns.Role{columns.Rank})
				So(se.Found, ShouldResemble, []string{"Team", "Score"})
				So(err.Error(), ShouldContainSubstring, "rank")
			})
		})

		Convey("When both roles are missing", func() {
			_, err := r.Resolve([]string{"Name?", "Solved"})

			Convey("Then both are reported", func() {
				var se *columns.SchemaError
				So(errors.As(err, &se), ShouldBeTrue)
				So(se.Missing, ShouldResemble, []columns.Role{columns.Identifier, columns.Rank})
				So(err.Error(), ShouldContainSubstring, "identifier or rank")
			})
		})

		Convey("When looking up single headers", func() {
			So(r.RoleOf("HANDLE"), ShouldEqual, columns.Identifier)
			So(r.RoleOf("position"), ShouldEqual, columns.Rank)
			So(r.RoleOf(""), ShouldEqual, columns.None)
			So(r.RoleOf("Penalty"), ShouldEqual, columns.None)
		})
	})
}
