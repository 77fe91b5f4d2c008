package output_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/newspulse/internal/adapters/output"
	"github.com/okian/newspulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCSVWriter_Write(t *testing.T) {
	Convey("Given a CSV writer and two rows", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		path := filepath.Join(dir, "market_sentiment.csv")
		w := output.NewCSVWriter(path)

		at := time.Date(2026, 10, 19, 9, 30, 5, 0, time.Local)
		rows := []model.ScoredRow{
			model.NewScoredRow("TCS", "TCS profit rises 10%", "POSITIVE", 1, 0.87, at),
			model.NewScoredRow("TCS", `TCS says "no layoffs", shares steady`, "NEUTRAL", 0, 0.5, at),
		}

		Convey("When writing the table", func() {
			So(w.Write(ctx, rows), ShouldBeNil)
			data, err := os.ReadFile(path)
			So(err, ShouldBeNil)

			Convey("Then the header comes first and fields are quoted only when needed", func() {
				So(string(data), ShouldEqual,
					"Stock,Headline,Sentiment,Score,Confidence,Timestamp\n"+
						"TCS,TCS profit rises 10%,POSITIVE,1,0.87,2026-10-19 09:30:05\n"+
						"TCS,\"TCS says \"\"no layoffs\"\", shares steady\",NEUTRAL,0,0.5,2026-10-19 09:30:05\n")
			})

			Convey("And it reads back as six columns per record", func() {
				records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
				So(err, ShouldBeNil)
				So(len(records), ShouldEqual, 3)
				for _, r := range records {
					So(len(r), ShouldEqual, 6)
				}
			})

			Convey("And no temporary files are left behind", func() {
				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When a previous, longer file exists", func() {
			So(os.WriteFile(path, []byte("old,data\n1,2\n3,4\n5,6\n7,8\n"), 0o600), ShouldBeNil)
			So(w.Write(ctx, rows[:1]), ShouldBeNil)
			first, _ := os.ReadFile(path)
			So(w.Write(ctx, rows[:1]), ShouldBeNil)
			second, _ := os.ReadFile(path)

			Convey("Then the contents are replaced, not appended, and repeat runs are identical", func() {
				So(string(first), ShouldEqual, "Stock,Headline,Sentiment,Score,Confidence,Timestamp\nTCS,TCS profit rises 10%,POSITIVE,1,0.87,2026-10-19 09:30:05\n")
				So(second, ShouldResemble, first)
			})
		})

		Convey("When there are no rows", func() {
			So(w.Write(ctx, nil), ShouldBeNil)
			data, _ := os.ReadFile(path)

			Convey("Then only the header is written", func() {
				So(string(data), ShouldEqual, "Stock,Headline,Sentiment,Score,Confidence,Timestamp\n")
			})
		})

		Convey("When the directory does not exist", func() {
			err := output.NewCSVWriter(filepath.Join(dir, "missing", "out.csv")).Write(ctx, rows)

			Convey("Then a write error is returned", func() {
				So(errors.Is(err, output.ErrWrite), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			err := w.Write(cctx, rows)

			Convey("Then nothing is written", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
				_, statErr := os.Stat(path)
				So(os.IsNotExist(statErr), ShouldBeTrue)
			})
		})
	})
}
