package integrity_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/podium/internal/domain/integrity"
	"github.com/okian/podium/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func reviewsWithRatings(ratings ...int) []model.Review {
	out := make([]model.Review, len(ratings))
	for i, r := range ratings {
		out[i] = model.Review{
			ID:      fmt.Sprintf("rev-%d", i),
			EventID: "ev1",
			UserID:  fmt.Sprintf("user-%d", i),
			Role:    model.RoleParticipant,
			Rating:  r,
		}
	}
	return out
}

type stubVerifier struct {
	verified map[string]model.Verification
	err      error
}

func (s *stubVerifier) Verify(_ context.Context, _, userID string) (model.Verification, error) {
	if s.err != nil {
		return model.Verification{}, s.err
	}
	if v, ok := s.verified[userID]; ok {
		return v, nil
	}
	return model.Verification{Verified: false, Role: model.RoleNone}, nil
}

func TestAnalyzer_DetectOutliers(t *testing.T) {
	Convey("Given an analyzer with default thresholds", t, func() {
		analyzer := integrity.NewAnalyzer()

		Convey("When all ratings are identical", func() {
			// median=4, MAD=0: every z is defined as 0
			reviews := reviewsWithRatings(4, 4, 4, 4, 4)

			Convey("Then MAD is degenerate and nothing is flagged", func() {
				So(analyzer.DetectOutliers(reviews), ShouldBeEmpty)
			})
		})

		Convey("When one rating is extreme against a tight cluster", func() {
			// sorted [1,3,3,4,4,4]: median=3.5, deviations
			// [0.5,0.5,0.5,0.5,0.5,2.5] -> MAD=0.5,
			// z(1) = -2.5/(1.4826*0.5) = -3.372
			reviews := reviewsWithRatings(4, 3, 4, 3, 4, 1)

			outliers := analyzer.DetectOutliers(reviews)

			Convey("Then only the extreme rating is flagged", func() {
				So(len(outliers), ShouldEqual, 1)
				So(outliers[0].Review.Rating, ShouldEqual, 1)
				So(outliers[0].Z, ShouldAlmostEqual, -3.3724, 0.001)
				So(outliers[0].Median, ShouldEqual, 3.5)
				So(outliers[0].MAD, ShouldEqual, 0.5)
			})
		})

		Convey("When a moderately low rating sits in a wide cluster", func() {
			// sorted [1,3,3,3,4,4,4]: median=3, MAD=1,
			// z(1) = -2/1.4826 = -1.349 -- below threshold
			reviews := reviewsWithRatings(4, 3, 4, 3, 4, 3, 1)

			Convey("Then nothing crosses the threshold", func() {
				So(analyzer.DetectOutliers(reviews), ShouldBeEmpty)
			})
		})

		Convey("When fewer than the minimum reviews exist", func() {
			reviews := reviewsWithRatings(5, 1)

			Convey("Then the check is skipped without error", func() {
				So(analyzer.DetectOutliers(reviews), ShouldBeEmpty)
			})
		})

		Convey("When the review set is empty", func() {
			So(analyzer.DetectOutliers(nil), ShouldBeEmpty)
		})

		Convey("When a rating equals the median exactly", func() {
			reviews := reviewsWithRatings(4, 3, 4, 3, 4, 1)
			outliers := analyzer.DetectOutliers(reviews)

			Convey("Then it is never an outlier regardless of other flags", func() {
				for _, o := range outliers {
					So(o.Review.Rating, ShouldNotEqual, 4)
					So(o.Review.Rating, ShouldNotEqual, 3)
				}
			})
		})
	})

	Convey("Given an analyzer with a lowered threshold", t, func() {
		analyzer := integrity.NewAnalyzer(integrity.WithZThreshold(1.0))

		Convey("When the wide-cluster set is analyzed", func() {
			reviews := reviewsWithRatings(4, 3, 4, 3, 4, 3, 1)

			outliers := analyzer.DetectOutliers(reviews)

			Convey("Then the low rating now crosses", func() {
				So(len(outliers), ShouldEqual, 1)
				So(outliers[0].Review.Rating, ShouldEqual, 1)
				So(outliers[0].Z, ShouldAlmostEqual, -1.349, 0.001)
			})
		})
	})

	Convey("Given an analyzer with a raised minimum", t, func() {
		analyzer := integrity.NewAnalyzer(integrity.WithMinReviews(10))

		Convey("When nine reviews exist", func() {
			reviews := reviewsWithRatings(4, 3, 4, 3, 4, 1, 4, 3, 4)

			Convey("Then analysis is still skipped", func() {
				So(analyzer.DetectOutliers(reviews), ShouldBeEmpty)
				So(analyzer.MinReviews(), ShouldEqual, 10)
			})
		})
	})
}

func TestAnalyzer_DetectInvalidUsers(t *testing.T) {
	Convey("Given an analyzer and a verifier", t, func() {
		analyzer := integrity.NewAnalyzer()
		ctx := context.Background()

		reviews := []model.Review{
			{ID: "r1", EventID: "ev1", UserID: "judge-1", Role: model.RoleJudge, Rating: 4},
			{ID: "r2", EventID: "ev1", UserID: "ghost-1", Role: model.RoleParticipant, Rating: 4},
		}

		Convey("When one author is no longer verified", func() {
			verifier := &stubVerifier{verified: map[string]model.Verification{
				"judge-1": {Verified: true, Role: model.RoleJudge},
			}}

			invalid, err := analyzer.DetectInvalidUsers(ctx, "ev1", reviews, verifier)

			Convey("Then only that review is reported", func() {
				So(err, ShouldBeNil)
				So(len(invalid), ShouldEqual, 1)
				So(invalid[0].Review.ID, ShouldEqual, "r2")
				So(invalid[0].Role, ShouldEqual, model.RoleNone)
			})
		})

		Convey("When every author verifies", func() {
			verifier := &stubVerifier{verified: map[string]model.Verification{
				"judge-1": {Verified: true, Role: model.RoleJudge},
				"ghost-1": {Verified: true, Role: model.RoleParticipant},
			}}

			invalid, err := analyzer.DetectInvalidUsers(ctx, "ev1", reviews, verifier)

			Convey("Then nothing is reported", func() {
				So(err, ShouldBeNil)
				So(invalid, ShouldBeEmpty)
			})
		})

		Convey("When the verifier fails", func() {
			verifier := &stubVerifier{err: errors.New("roster unavailable")}

			_, err := analyzer.DetectInvalidUsers(ctx, "ev1", reviews, verifier)

			Convey("Then the check surfaces the error", func() {
				So(err, ShouldNotBeNil)
			})
		})

		Convey("When a verified judge rates exactly the median", func() {
			// Flag independence: z=0 must never produce an outlier flag,
			// but a revoked judge must still produce an invalid-user one.
			set := reviewsWithRatings(4, 3, 4, 3, 4, 1)
			set[0].UserID = "judge-1"

			verifier := &stubVerifier{verified: map[string]model.Verification{}}
			for _, r := range set {
				verifier.verified[r.UserID] = model.Verification{Verified: true, Role: model.RoleParticipant}
			}
			// Revoke judge-1.
			verifier.verified["judge-1"] = model.Verification{Verified: false, Role: model.RoleNone}

			outliers := analyzer.DetectOutliers(set)
			invalid, err := analyzer.DetectInvalidUsers(ctx, "ev1", set, verifier)

			Convey("Then the two flags stay independent", func() {
				So(err, ShouldBeNil)
				for _, o := range outliers {
					So(o.Review.UserID, ShouldNotEqual, "judge-1")
				}
				So(len(invalid), ShouldEqual, 1)
				So(invalid[0].Review.UserID, ShouldEqual, "judge-1")
			})
		})
	})
}
