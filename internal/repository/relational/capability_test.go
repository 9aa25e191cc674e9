package relational

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify_MissingColumn(t *testing.T) {
	err := &pgconn.PgError{Code: "42703", Message: `column "taxonomy_categories" does not exist`}

	issue, ok := Classify(err)
	if !ok {
		t.Fatal("expected a recoverable issue")
	}
	if issue.Column != "taxonomy_categories" {
		t.Errorf("column = %q, want taxonomy_categories", issue.Column)
	}
}

func TestClassify_QualifiedColumn(t *testing.T) {
	err := &pgconn.PgError{Code: "42703", Message: `column a.price_levels does not exist`}

	issue, ok := Classify(err)
	if !ok {
		t.Fatal("expected a recoverable issue")
	}
	if issue.Column != "price_levels" {
		t.Errorf("table prefix must be stripped, got %q", issue.Column)
	}
}

func TestClassify_MissingRelation(t *testing.T) {
	err := &pgconn.PgError{Code: "42P01", Message: `relation "activity_traits" does not exist`}

	issue, ok := Classify(err)
	if !ok {
		t.Fatal("expected a recoverable issue")
	}
	if issue.Relation != "activity_traits" {
		t.Errorf("relation = %q, want activity_traits", issue.Relation)
	}
}

func TestClassify_WrappedError(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "42703", Message: `column "tags" does not exist`}
	wrapped := fmt.Errorf("select activities: %w", pgErr)

	if _, ok := Classify(wrapped); !ok {
		t.Error("wrapped pg errors must still classify")
	}
}

func TestClassify_UnrelatedErrors(t *testing.T) {
	if _, ok := Classify(errors.New("connection refused")); ok {
		t.Error("plain errors must not classify")
	}
	if _, ok := Classify(&pgconn.PgError{Code: "23505", Message: "duplicate key"}); ok {
		t.Error("non-schema pg errors must not classify")
	}
	if _, ok := Classify(&pgconn.PgError{Code: "42703", Message: "weird message shape"}); ok {
		t.Error("unparseable messages must not classify")
	}
}

func TestCapabilities_MarkAndReset(t *testing.T) {
	caps := NewCapabilities()

	if caps.ColumnMissing("tags") {
		t.Error("fresh cache must report nothing missing")
	}

	caps.MarkColumnMissing("tags")
	caps.MarkRelationMissing("activity_traits")

	if !caps.ColumnMissing("tags") {
		t.Error("marked column must be reported missing")
	}
	if !caps.RelationMissing("activity_traits") {
		t.Error("marked relation must be reported missing")
	}
	if caps.ColumnMissing("price_levels") {
		t.Error("unmarked column must not be reported missing")
	}

	caps.Reset()
	if caps.ColumnMissing("tags") || caps.RelationMissing("activity_traits") {
		t.Error("reset must clear all findings")
	}
}
