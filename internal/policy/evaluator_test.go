package policy

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"

	"github.com/dropDatabas3/scopegate/internal/audit"
)

// staticResolver resuelve clients desde un map fijo.
type staticResolver struct {
	clients map[string]*ClientPolicy
	err     error
}

func (r *staticResolver) ResolveClientPolicy(_ context.Context, clientID string) (*ClientPolicy, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.clients[clientID], nil
}

func newTestEvaluator(rec *audit.Recorder) *Evaluator {
	return NewEvaluator(&staticResolver{clients: map[string]*ClientPolicy{
		"web-app": {
			ClientID:      "web-app",
			AllowedScopes: []string{"openid", "profile", "email"},
		},
	}}, rec)
}

func TestEvaluate_RestrictsToAllowList(t *testing.T) {
	rec := audit.NewRecorder()
	e := newTestEvaluator(rec)

	dec := e.Evaluate(context.Background(), "web-app", []string{"openid", "profile", "address"})

	wantAllowed := []string{"openid", "profile"}
	wantDisallowed := []string{"address"}
	if !reflect.DeepEqual(dec.Allowed, wantAllowed) {
		t.Fatalf("allowed = %v, want %v", dec.Allowed, wantAllowed)
	}
	if !reflect.DeepEqual(dec.Disallowed, wantDisallowed) {
		t.Fatalf("disallowed = %v, want %v", dec.Disallowed, wantDisallowed)
	}
	if n := rec.CountByType(audit.EventClientScopeRestricted); n != 1 {
		t.Fatalf("expected exactly 1 restriction event, got %d", n)
	}
}

func TestEvaluate_AllAllowedNoAudit(t *testing.T) {
	rec := audit.NewRecorder()
	e := newTestEvaluator(rec)

	dec := e.Evaluate(context.Background(), "web-app", []string{"openid", "email"})
	if len(dec.Disallowed) != 0 {
		t.Fatalf("disallowed = %v, want empty", dec.Disallowed)
	}
	if n := len(rec.Events()); n != 0 {
		t.Fatalf("expected no audit events, got %d", n)
	}
}

func TestEvaluate_UnknownClientFailsClosed(t *testing.T) {
	rec := audit.NewRecorder()
	e := newTestEvaluator(rec)

	dec := e.Evaluate(context.Background(), "ghost", []string{"openid", "profile"})
	if len(dec.Allowed) != 0 {
		t.Fatalf("allowed = %v, want empty for unknown client", dec.Allowed)
	}
	if len(dec.Disallowed) != 2 {
		t.Fatalf("disallowed = %v, want both requested scopes", dec.Disallowed)
	}
}

func TestEvaluate_ResolverErrorFailsClosed(t *testing.T) {
	rec := audit.NewRecorder()
	e := NewEvaluator(&staticResolver{err: errors.New("store down")}, rec)

	dec := e.Evaluate(context.Background(), "web-app", []string{"openid"})
	if len(dec.Allowed) != 0 || len(dec.Disallowed) != 1 {
		t.Fatalf("expected fail-closed decision, got %+v", dec)
	}
}

func TestEvaluate_SuppressAudit(t *testing.T) {
	rec := audit.NewRecorder()
	e := newTestEvaluator(rec)

	e.EvaluateWithOptions(context.Background(), "web-app", []string{"address"}, EvaluateOptions{SuppressAudit: true})
	if n := len(rec.Events()); n != 0 {
		t.Fatalf("expected suppressed audit, got %d events", n)
	}
}

func TestEvaluate_NormalizationAndPartition(t *testing.T) {
	rec := audit.NewRecorder()
	e := newTestEvaluator(rec)

	raw := []string{" OpenID ", "profile", "", "PROFILE", "address", "  "}
	dec := e.Evaluate(context.Background(), "web-app", raw)

	union := append(append([]string{}, dec.Allowed...), dec.Disallowed...)
	sort.Strings(union)
	want := []string{"address", "openid", "profile"}
	if !reflect.DeepEqual(union, want) {
		t.Fatalf("allowed ∪ disallowed = %v, want %v", union, want)
	}
	// Disjoint
	for _, a := range dec.Allowed {
		for _, d := range dec.Disallowed {
			if a == d {
				t.Fatalf("scope %q present in both sets", a)
			}
		}
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	rec := audit.NewRecorder()
	e := newTestEvaluator(rec)

	in := []string{"openid", "address", "profile"}
	first := e.Evaluate(context.Background(), "web-app", in)
	second := e.Evaluate(context.Background(), "web-app", in)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("decisions differ: %+v vs %+v", first, second)
	}
}
