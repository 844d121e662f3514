package broadcast_test

import (
	"context"
	"testing"

	"github.com/okian/podium/internal/adapters/mq/broadcast"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryBroadcaster(t *testing.T) {
	Convey("Given a broadcaster", t, func() {
		ctx := context.Background()
		b := broadcast.NewInMemoryBroadcaster()
		Reset(func() { _ = b.Close() })

		Convey("When a subscriber listens on an event", func() {
			ch, cancel := b.Subscribe(ctx, "ev1")
			defer cancel()

			Convey("Then published events for that event arrive", func() {
				ok := b.Publish(ctx, broadcast.Event{
					Kind:    broadcast.KindLeaderboardUpdated,
					EventID: "ev1",
					Round:   1,
					Payload: broadcast.Payload{
						TeamID:         "t1",
						TeamName:       "Alpha",
						SubmissionID:   "s1",
						AggregateScore: 6.67,
					},
				})
				So(ok, ShouldBeTrue)

				e := <-ch
				So(e.Kind, ShouldEqual, broadcast.KindLeaderboardUpdated)
				So(e.EventID, ShouldEqual, "ev1")
				So(e.Round, ShouldEqual, 1)
				So(e.Payload.TeamID, ShouldEqual, "t1")
				So(e.Payload.TeamName, ShouldEqual, "Alpha")
				So(e.Payload.SubmissionID, ShouldEqual, "s1")
				So(e.Payload.AggregateScore, ShouldEqual, 6.67)
				So(e.Timestamp.IsZero(), ShouldBeFalse)
			})

			Convey("Then events for other events do not arrive", func() {
				So(b.Publish(ctx, broadcast.Event{Kind: broadcast.KindRoundFinalized, EventID: "ev2"}), ShouldBeTrue)
				So(len(ch), ShouldEqual, 0)
			})

			Convey("Then cancel removes the subscription", func() {
				So(b.Subscribers(ctx), ShouldEqual, 1)
				cancel()
				So(b.Subscribers(ctx), ShouldEqual, 0)

				_, open := <-ch
				So(open, ShouldBeFalse)
			})
		})

		Convey("When multiple subscribers listen on the same event", func() {
			ch1, cancel1 := b.Subscribe(ctx, "ev1")
			ch2, cancel2 := b.Subscribe(ctx, "ev1")
			defer cancel1()
			defer cancel2()

			So(b.Publish(ctx, broadcast.Event{Kind: broadcast.KindLeaderboardUpdated, EventID: "ev1"}), ShouldBeTrue)

			Convey("Then each receives the event", func() {
				So(len(ch1), ShouldEqual, 1)
				So(len(ch2), ShouldEqual, 1)
			})
		})

		Convey("When a subscriber's buffer is full", func() {
			small := broadcast.NewInMemoryBroadcaster(broadcast.WithBufferSize(1))
			defer small.Close()

			ch, cancel := small.Subscribe(ctx, "ev1")
			defer cancel()

			So(small.Publish(ctx, broadcast.Event{EventID: "ev1", Round: 1}), ShouldBeTrue)
			So(small.Publish(ctx, broadcast.Event{EventID: "ev1", Round: 2}), ShouldBeTrue)

			Convey("Then excess events are dropped, not blocked on", func() {
				So(len(ch), ShouldEqual, 1)
				e := <-ch
				So(e.Round, ShouldEqual, 1)
			})
		})

		Convey("When the broadcaster is closed", func() {
			ch, cancel := b.Subscribe(ctx, "ev1")
			defer cancel()

			So(b.Close(), ShouldBeNil)

			Convey("Then publish refuses and channels close", func() {
				So(b.IsClosed(), ShouldBeTrue)
				So(b.Publish(ctx, broadcast.Event{EventID: "ev1"}), ShouldBeFalse)

				_, open := <-ch
				So(open, ShouldBeFalse)
			})

			Convey("Then closing again is a no-op", func() {
				So(b.Close(), ShouldBeNil)
			})

			Convey("Then new subscriptions get a closed channel", func() {
				late, lateCancel := b.Subscribe(ctx, "ev1")
				defer lateCancel()

				_, open := <-late
				So(open, ShouldBeFalse)
			})
		})
	})
}
