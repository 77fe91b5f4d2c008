package model_test

import (
	"testing"
	"time"

	"github.com/okian/newspulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScoredRow(t *testing.T) {
	Convey("Given a row scored at a fixed local time", t, func() {
		at := time.Date(2024, 1, 2, 3, 4, 5, 999, time.Local)
		row := model.NewScoredRow("HDFC Bank", `HDFC Bank says "steady", rates unchanged`, "NEUTRAL", 0, 0.9, at)

		Convey("Then the timestamp drops sub-second precision", func() {
			So(row.Timestamp, ShouldEqual, "2024-01-02 03:04:05")
		})

		Convey("Then its record follows the column order", func() {
			So(len(row.Record()), ShouldEqual, len(model.Columns))
			So(row.Record(), ShouldResemble, []string{
				"HDFC Bank", `HDFC Bank says "steady", rates unchanged`, "NEUTRAL", "0", "0.9", "2024-01-02 03:04:05",
			})
		})

		Convey("Then negative scores and three-decimal confidences render plainly", func() {
			r := model.NewScoredRow("TCS", "x", "NEGATIVE", -1, 0.952, at)
			So(r.Record()[3], ShouldEqual, "-1")
			So(r.Record()[4], ShouldEqual, "0.952")
		})
	})

	Convey("Given configured entity names", t, func() {
		entities := model.EntitiesFromStrings([]string{"Infosys", "Nifty 50"})

		Convey("Then order and spelling are kept", func() {
			So(entities, ShouldResemble, []model.Entity{"Infosys", "Nifty 50"})
			So(entities[1].String(), ShouldEqual, "Nifty 50")
		})
	})
}
