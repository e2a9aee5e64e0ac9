package loader_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/teamrank/internal/adapters/loader"
	"github.com/okian/teamrank/internal/adapters/spreadsheet"
	"github.com/okian/teamrank/internal/domain/columns"
	"github.com/okian/teamrank/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func newLoader(opts ...loader.Option) *loader.Loader {
	if err := logger.Init(logger.WithWriter(io.Discard)); err != nil {
		panic(err)
	}
	r := columns.NewResolver([]string{"Username", "Team", "Handle"}, []string{"Rank", "Position"})
	return loader.New(r, opts...)
}

func writeXLSX(t *testing.T, path string, rows ...[]any) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	Convey("Given a directory with mixed files", t, func() {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "02.CSV"), "Team,Rank\n")
		writeFile(t, filepath.Join(dir, "01.xlsx"), "")
		writeFile(t, filepath.Join(dir, "notes.txt"), "")
		writeFile(t, filepath.Join(dir, ".hidden.csv"), "")
		writeFile(t, filepath.Join(dir, "~$01.xlsx"), "")
		So(os.Mkdir(filepath.Join(dir, "sub.csv"), 0o755), ShouldBeNil)
		l := newLoader()

		Convey("When discovering", func() {
			paths, err := l.Discover(context.Background(), dir)

			Convey("Then only contest files come back, in lexical order", func() {
				So(err, ShouldBeNil)
				So(paths, ShouldResemble, []string{
					filepath.Join(dir, "01.xlsx"),
					filepath.Join(dir, "02.CSV"),
				})
			})
		})

		Convey("When the extension filter excludes everything", func() {
			l := newLoader(loader.WithExtensions([]string{"ods"}))
			_, err := l.Discover(context.Background(), dir)

			Convey("Then the input counts as missing", func() {
				So(errors.Is(err, loader.ErrMissingInput), ShouldBeTrue)
				So(l.Extensions(), ShouldResemble, []string{".ods"})
			})
		})
	})

	Convey("Given a directory that does not exist", t, func() {
		_, err := newLoader().Discover(context.Background(), filepath.Join(t.TempDir(), "Leaderboards"))
		So(errors.Is(err, loader.ErrMissingInput), ShouldBeTrue)
	})

	Convey("Given a path that is a file", t, func() {
		path := filepath.Join(t.TempDir(), "board.csv")
		writeFile(t, path, "")
		_, err := newLoader().Discover(context.Background(), path)
		So(errors.Is(err, loader.ErrMissingInput), ShouldBeTrue)
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given an xlsx export with a mix of good and bad rows", t, func() {
		path := filepath.Join(t.TempDir(), "01.xlsx")
		writeXLSX(t, path,
			[]any{"Rank", "Team", "Score"},
			[]any{1, " alice ", 500},
			[]any{"2.0", "bob", 400},
			[]any{"", "carol", 300},
			[]any{"n/a", "dave", 0},
			[]any{0, "erin", 0},
			[]any{4, "   ", 0},
			[]any{5.7, "frank", 10},
		)
		l := newLoader()

		Convey("When loading it", func() {
			res := l.LoadFile(context.Background(), path)

			Convey("Then valid rows become records and the rest are counted", func() {
				So(res.Err, ShouldBeNil)
				So(res.ContestID, ShouldEqual, "01.xlsx")
				So(res.Columns, ShouldResemble, []string{"Rank", "Team", "Score"})
				So(len(res.Records), ShouldEqual, 3)
				So(res.Records[0].ParticipantID, ShouldEqual, "alice")
				So(res.Records[0].Rank, ShouldEqual, 1)
				So(res.Records[1].Rank, ShouldEqual, 2)
				So(res.Records[2].ParticipantID, ShouldEqual, "frank")
				So(res.Records[2].Rank, ShouldEqual, 5)
				So(res.Rejected, ShouldEqual, 4)
			})
		})
	})

	Convey("Given a csv without a rank column", t, func() {
		path := filepath.Join(t.TempDir(), "bad.csv")
		writeFile(t, path, "Username,Solved\nalice,3\n")

		Convey("When loading it", func() {
			res := newLoader().LoadFile(context.Background(), path)

			Convey("Then it is a schema mismatch listing the columns found", func() {
				So(loader.IsSchemaMismatch(res.Err), ShouldBeTrue)
				So(res.Columns, ShouldResemble, []string{"Username", "Solved"})
				So(res.Records, ShouldBeEmpty)
			})
		})
	})

	Convey("Given a corrupt workbook", t, func() {
		path := filepath.Join(t.TempDir(), "corrupt.xlsx")
		writeFile(t, path, "PK but not really")

		Convey("When loading it", func() {
			res := newLoader().LoadFile(context.Background(), path)

			Convey("Then it is unreadable", func() {
				So(errors.Is(res.Err, loader.ErrUnreadableFile), ShouldBeTrue)
				So(errors.Is(res.Err, spreadsheet.ErrUnreadable), ShouldBeTrue)
			})
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		res := newLoader().LoadFile(ctx, "whatever.csv")
		So(errors.Is(res.Err, context.Canceled), ShouldBeTrue)
	})
}

func TestLoadAll(t *testing.T) {
	Convey("Given several exports", t, func() {
		dir := t.TempDir()
		var paths []string
		for i := 1; i <= 6; i++ {
			p := filepath.Join(dir, fmt.Sprintf("%02d.csv", i))
			writeFile(t, p, fmt.Sprintf("Handle,Position\nuser%d,%d\n", i, i))
			paths = append(paths, p)
		}
		broken := filepath.Join(dir, "07.csv")
		writeFile(t, broken, "Handle\nx\n")
		paths = append(paths, broken)

		for _, workers := range []int{1, 4} {
			Convey(fmt.Sprintf("When loading with %d workers", workers), func() {
				results := newLoader(loader.WithWorkers(workers)).LoadAll(context.Background(), paths)

				Convey("Then results line up with the input order", func() {
					So(len(results), ShouldEqual, 7)
					for i := 0; i < 6; i++ {
						So(results[i].Err, ShouldBeNil)
						So(results[i].Path, ShouldEqual, paths[i])
						So(results[i].Records[0].Rank, ShouldEqual, i+1)
					}
				})

				Convey("Then one bad file does not stop the others", func() {
					So(loader.IsSchemaMismatch(results[6].Err), ShouldBeTrue)
				})
			})
		}
	})
}

func TestParseRank(t *testing.T) {
	Convey("Given rank cells", t, func() {
		cases := map[string]struct {
			rank int
			ok   bool
		}{
			"1":    {1, true},
			" 12 ": {12, true},
			"3.0":  {3, true},
			"3.9":  {3, true},
			"1e2":  {100, true},
			"0":    {0, false},
			"0.5":  {0, false},
			"-4":   {0, false},
			"":     {0, false},
			"abc":  {0, false},
			"NaN":  {0, false},
			"Inf":  {0, false},
		}
		for in, want := range cases {
			rank, ok := loader.ParseRank(in)
			So(ok, ShouldEqual, want.ok)
			So(rank, ShouldEqual, want.rank)
		}
	})
}
