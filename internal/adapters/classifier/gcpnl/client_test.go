package gcpnl

import (
	"context"
	"errors"
	"testing"

	"cloud.google.com/go/language/apiv2/languagepb"
	"github.com/googleapis/gax-go/v2"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/newspulse/internal/domain/sentiment"
)

type fakeAPI struct {
	score  float32
	err    error
	noDoc  bool
	gotReq *languagepb.AnalyzeSentimentRequest
	closed bool
}

func (f *fakeAPI) AnalyzeSentiment(_ context.Context, req *languagepb.AnalyzeSentimentRequest, _ ...gax.CallOption) (*languagepb.AnalyzeSentimentResponse, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	if f.noDoc {
		return &languagepb.AnalyzeSentimentResponse{}, nil
	}
	return &languagepb.AnalyzeSentimentResponse{
		DocumentSentiment: &languagepb.Sentiment{Score: f.score, Magnitude: 0.9},
	}, nil
}

func (f *fakeAPI) Close() error {
	f.closed = true
	return nil
}

func TestClient_Classify(t *testing.T) {
	Convey("Given a Natural Language client over a fake API", t, func() {
		ctx := context.Background()
		api := &fakeAPI{}
		client := newWithAPI(api)

		Convey("When the document score is clearly positive", func() {
			api.score = 0.75
			c, err := client.Classify(ctx, "TCS profit rises 10%")

			Convey("Then the label is positive with the score as confidence", func() {
				So(err, ShouldBeNil)
				So(c.Label, ShouldEqual, sentiment.LabelPositive)
				So(sentiment.RoundConfidence(c.Probability), ShouldEqual, 0.75)
				So(api.gotReq.GetDocument().GetContent(), ShouldEqual, "TCS profit rises 10%")
				So(api.gotReq.GetDocument().GetType(), ShouldEqual, languagepb.Document_PLAIN_TEXT)
			})
		})

		Convey("When the document score is negative", func() {
			api.score = -0.5
			c, err := client.Classify(ctx, "x")

			So(err, ShouldBeNil)
			So(c.Label, ShouldEqual, sentiment.LabelNegative)
			So(c.Probability, ShouldEqual, 0.5)
		})

		Convey("When the document score is near zero", func() {
			api.score = 0.125
			c, err := client.Classify(ctx, "x")

			So(err, ShouldBeNil)
			So(c.Label, ShouldEqual, sentiment.LabelNeutral)
			So(c.Probability, ShouldEqual, 0.875)
		})

		Convey("When thresholds are widened", func() {
			api.score = 0.5
			c, err := newWithAPI(api, WithThresholds(0.6, -0.6)).Classify(ctx, "x")

			So(err, ShouldBeNil)
			So(c.Label, ShouldEqual, sentiment.LabelNeutral)
		})

		Convey("When the API fails", func() {
			api.err = errors.New("permission denied")
			_, err := client.Classify(ctx, "x")

			So(errors.Is(err, ErrUpstream), ShouldBeTrue)
		})

		Convey("When the response has no document sentiment", func() {
			api.noDoc = true
			_, err := client.Classify(ctx, "x")

			So(errors.Is(err, ErrNoSentiment), ShouldBeTrue)
		})

		Convey("When closing", func() {
			So(client.Close(), ShouldBeNil)
			So(api.closed, ShouldBeTrue)
		})
	})
}

func TestNew_BadCredentials(t *testing.T) {
	Convey("Given credentials that are not base64", t, func() {
		_, err := New(context.Background(), WithCredentialsB64("%%%"))

		So(errors.Is(err, ErrCredentials), ShouldBeTrue)
	})
}
