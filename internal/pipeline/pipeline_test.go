package pipeline

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/anvgorok/repshape/internal/config"
	"github.com/anvgorok/repshape/internal/dump"
	"github.com/anvgorok/repshape/internal/logger"
	"github.com/anvgorok/repshape/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		Dump: config.DumpConfig{
			DataDir:   ".",
			TagsFile:  "Tags.xml",
			UsersFile: "Users.xml",
			PostsFile: "Posts.xml",
			SiteHost:  "stackoverflow.com",
		},
		Analysis: config.AnalysisConfig{
			TopTags:            3,
			MinReputation:      100,
			MinCodeLines:       5,
			ShortWordThreshold: 150,
			LongWordThreshold:  400,
		},
		Regression: config.RegressionConfig{
			MinSegmentSize: 10,
			MaxIterations:  200,
			Tolerance:      1e-8,
		},
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
	}
}

func tagRows() []dump.Row {
	return []dump.Row{
		{"TagName": "go", "Count": "100"},
		{"TagName": "sql", "Count": "50"},
		{"TagName": "misc", "Count": "10"},
		{"TagName": "fringe", "Count": "1"},
	}
}

func userRows() []dump.Row {
	return []dump.Row{
		{"Id": "1", "Reputation": "500"},  // classified I-shaped below
		{"Id": "2", "Reputation": "50"},   // below reputation floor
		{"Id": "3", "Reputation": "300"},  // profiled but unclassifiable
		{"Reputation": "9000"},            // no Id, skipped
	}
}

// postRows builds a post stream containing question rows for profiling and
// answer rows for feature extraction. User 1 gains everything on one tag
// (I-shaped); user 3 splits gains evenly across two tags and matches no
// shape rule.
func postRows() []dump.Row {
	rows := []dump.Row{
		{"Id": "10", "PostTypeId": "1", "OwnerUserId": "1", "Tags": "<go>", "Score": "10"},
		{"Id": "11", "PostTypeId": "1", "OwnerUserId": "3", "Tags": "<go>", "Score": "5"},
		{"Id": "12", "PostTypeId": "1", "OwnerUserId": "3", "Tags": "<sql>", "Score": "5"},
		{"Id": "13", "PostTypeId": "1", "OwnerUserId": "2", "Tags": "<go>", "Score": "20"},
		{"Id": "14", "PostTypeId": "1", "OwnerUserId": "1", "Tags": "<fringe>", "Score": "50"},
	}

	// Twelve answers by the classified user, with feature and label variety.
	// Word counts sit well clear of the 150/400 bucket boundaries because
	// markup tokens count as words too.
	wordCounts := []int{40, 60, 80, 200, 220, 240, 260, 280, 300, 320, 450, 470}
	codeBlock := "<code>a\nb\nc\nd\ne\nf</code>"
	for i := 0; i < 12; i++ {
		body := strings.Repeat("word ", wordCounts[i])
		if i%2 == 0 {
			body += codeBlock
		}
		if i%3 == 0 {
			body += `<a href="https://example.com/doc">doc</a>`
		}
		row := dump.Row{
			"Id":          fmt.Sprintf("%d", 101+i),
			"PostTypeId":  "2",
			"OwnerUserId": "1",
			"Score":       fmt.Sprintf("%d", i%7-3),
			"Body":        body,
		}
		rows = append(rows, row)
	}

	// Gated out: unclassified owner, missing owner, empty body, question body.
	rows = append(rows,
		dump.Row{"Id": "200", "PostTypeId": "2", "OwnerUserId": "3", "Score": "4", "Body": "fine answer"},
		dump.Row{"Id": "201", "PostTypeId": "2", "Score": "4", "Body": "ownerless"},
		dump.Row{"Id": "202", "PostTypeId": "2", "OwnerUserId": "1", "Score": "4", "Body": ""},
		dump.Row{"Id": "203", "PostTypeId": "1", "OwnerUserId": "1", "Score": "4", "Body": "a question body"},
	)

	// Self-referencing accepted-answer marker.
	rows = append(rows, dump.Row{
		"Id": "300", "PostTypeId": "2", "OwnerUserId": "1",
		"Score": "0", "AcceptedAnswerId": "300", "Body": "accepted answer text",
	})
	return rows
}

func newTestPipeline(cfg *config.Config) *Pipeline {
	return NewWithSources(cfg,
		dump.Rows(tagRows()),
		dump.Rows(userRows()),
		dump.Rows(postRows()),
	)
}

func TestRunEndToEnd(t *testing.T) {
	logger.InitWithWriter("error", "text", io.Discard)

	cfg := testConfig()
	report, answers, err := newTestPipeline(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.RunID == "" {
		t.Error("Expected a non-empty run ID")
	}
	if err := report.Validate(); err != nil {
		t.Errorf("Report failed validation: %v", err)
	}

	// Only user 1 classifies, as I-shaped.
	if got := report.ShapeCounts[models.ShapeI]; got != 1 {
		t.Errorf("ShapeCounts[I] = %d, want 1", got)
	}
	for _, s := range []models.Shape{models.ShapeT, models.ShapePi, models.ShapeComb} {
		if got := report.ShapeCounts[s]; got != 0 {
			t.Errorf("ShapeCounts[%s] = %d, want 0", s, got)
		}
	}

	// The twelve variety answers plus the self-accepted one.
	if len(answers) != 13 {
		t.Fatalf("Extracted %d answers, want 13", len(answers))
	}
	for _, a := range answers {
		if a.OwnerID != 1 {
			t.Errorf("Answer %d attributed to user %d, want 1", a.AnswerID, a.OwnerID)
		}
		if a.Shape != models.ShapeI {
			t.Errorf("Answer %d carries shape %q, want %q", a.AnswerID, a.Shape, models.ShapeI)
		}
		if a.AnswerID == 300 && !a.Accepted {
			t.Error("Answer 300 should carry the accepted flag")
		}
		if a.AnswerID != 300 && a.Accepted {
			t.Errorf("Answer %d should not carry the accepted flag", a.AnswerID)
		}
	}

	// One segment, sized to the classified user's answers.
	seg, ok := report.Segments[models.ShapeI]
	if !ok {
		t.Fatal("Expected a fitted segment for the I shape")
	}
	if seg.Observations != 13 {
		t.Errorf("Segment observations = %d, want 13", seg.Observations)
	}
	for _, name := range models.CoefficientOrder {
		if _, ok := seg.Coefficients[name]; !ok {
			t.Errorf("Segment missing coefficient %q", name)
		}
	}
	if len(report.Segments) != 1 {
		t.Errorf("Fitted %d segments, want 1", len(report.Segments))
	}
}

func TestRunUndersizedSegmentOmitted(t *testing.T) {
	logger.InitWithWriter("error", "text", io.Discard)

	cfg := testConfig()
	cfg.Regression.MinSegmentSize = 100
	report, answers, err := newTestPipeline(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(answers) == 0 {
		t.Fatal("Expected extracted answers even when no segment fits")
	}
	if len(report.Segments) != 0 {
		t.Errorf("Fitted %d segments, want 0 under the raised segment floor", len(report.Segments))
	}
	if got := report.ShapeCounts[models.ShapeI]; got != 1 {
		t.Errorf("ShapeCounts[I] = %d, want 1", got)
	}
}

func TestRunDeterministic(t *testing.T) {
	logger.InitWithWriter("error", "text", io.Discard)

	cfg := testConfig()
	first, firstAnswers, err := newTestPipeline(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	second, secondAnswers, err := newTestPipeline(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if !reflect.DeepEqual(first.ShapeCounts, second.ShapeCounts) {
		t.Errorf("Shape counts differ between runs: %v vs %v", first.ShapeCounts, second.ShapeCounts)
	}
	if !reflect.DeepEqual(first.Segments, second.Segments) {
		t.Error("Segment results differ between runs")
	}
	if !reflect.DeepEqual(firstAnswers, secondAnswers) {
		t.Error("Extracted answers differ between runs")
	}
	if first.RunID == second.RunID {
		t.Error("Each run should get its own run ID")
	}
}

func TestRunBadTagSource(t *testing.T) {
	logger.InitWithWriter("error", "text", io.Discard)

	cfg := testConfig()
	p := NewWithSources(cfg,
		dump.File("testdata/does-not-exist.xml"),
		dump.Rows(userRows()),
		dump.Rows(postRows()),
	)
	if _, _, err := p.Run(context.Background()); err == nil {
		t.Error("Expected an error for a missing tag dump")
	}
}
