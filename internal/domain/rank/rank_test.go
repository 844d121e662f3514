package rank_test

import (
	"testing"

	"github.com/okian/podium/internal/domain/rank"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAssign(t *testing.T) {
	Convey("Given unranked leaderboard rows", t, func() {
		Convey("When scores tie at the top", func() {
			rows := []rank.Row{
				{TeamID: "t3", TeamName: "B", AggregateScore: 8.0},
				{TeamID: "t1", TeamName: "A", AggregateScore: 9.5},
				{TeamID: "t4", TeamName: "C", AggregateScore: 7.0},
				{TeamID: "t2", TeamName: "A2", AggregateScore: 9.5},
			}

			entries := rank.Assign(rows)

			Convey("Then dense ranks are assigned with no gaps", func() {
				So(len(entries), ShouldEqual, 4)
				So(entries[0].TeamName, ShouldEqual, "A")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].TeamName, ShouldEqual, "A2")
				So(entries[1].Rank, ShouldEqual, 1)
				So(entries[2].TeamName, ShouldEqual, "B")
				So(entries[2].Rank, ShouldEqual, 2)
				So(entries[3].TeamName, ShouldEqual, "C")
				So(entries[3].Rank, ShouldEqual, 3)
			})
		})

		Convey("When all scores differ", func() {
			rows := []rank.Row{
				{TeamName: "X", AggregateScore: 1},
				{TeamName: "Y", AggregateScore: 3},
				{TeamName: "Z", AggregateScore: 2},
			}

			entries := rank.Assign(rows)

			Convey("Then ranks are 1..n in score order", func() {
				So(entries[0].TeamName, ShouldEqual, "Y")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].TeamName, ShouldEqual, "Z")
				So(entries[1].Rank, ShouldEqual, 2)
				So(entries[2].TeamName, ShouldEqual, "X")
				So(entries[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When ties are broken by name", func() {
			rows := []rank.Row{
				{TeamName: "beta", AggregateScore: 5},
				{TeamName: "Alpha", AggregateScore: 5},
				{TeamName: "alpha", AggregateScore: 5},
			}

			entries := rank.Assign(rows)

			Convey("Then byte-wise ascending order applies", func() {
				// Uppercase sorts before lowercase byte-wise.
				So(entries[0].TeamName, ShouldEqual, "Alpha")
				So(entries[1].TeamName, ShouldEqual, "alpha")
				So(entries[2].TeamName, ShouldEqual, "beta")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[1].Rank, ShouldEqual, 1)
				So(entries[2].Rank, ShouldEqual, 1)
			})
		})

		Convey("When the input is empty", func() {
			So(rank.Assign(nil), ShouldBeEmpty)
		})

		Convey("When zero-score rows are present", func() {
			rows := []rank.Row{
				{TeamName: "scored", AggregateScore: 6.5, JudgesCompleted: 2, JudgesTotal: 3},
				{TeamName: "unscored", AggregateScore: 0, JudgesCompleted: 0, JudgesTotal: 3},
			}

			entries := rank.Assign(rows)

			Convey("Then they are ranked, not hidden", func() {
				So(len(entries), ShouldEqual, 2)
				So(entries[1].TeamName, ShouldEqual, "unscored")
				So(entries[1].Rank, ShouldEqual, 2)
				So(entries[1].JudgesCompleted, ShouldEqual, 0)
			})
		})

		Convey("When the input order is shuffled", func() {
			a := []rank.Row{
				{TeamName: "n1", AggregateScore: 2},
				{TeamName: "n2", AggregateScore: 2},
				{TeamName: "n3", AggregateScore: 1},
			}
			b := []rank.Row{a[2], a[0], a[1]}

			Convey("Then output is deterministic", func() {
				So(rank.Assign(a), ShouldResemble, rank.Assign(b))
			})
		})
	})
}
