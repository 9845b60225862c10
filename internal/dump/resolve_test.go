// SPDX-License-Identifier: MPL-2.0

package dump

import (
	"errors"
	"testing"

	"github.com/launchdump/launchdump/pkg/launch"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	lc := launch.NewContext(launch.WithEnviron(nil))
	lc.SetConfiguration("greeting", "world")
	t.Cleanup(func() {
		if len(lc.Configurations()) != 1 {
			t.Errorf("resolution bound configurations: %v", lc.Configurations())
		}
	})

	tests := []struct {
		name    string
		token   launch.Substitutions
		want    string
		raw     string
		wantErr bool
	}{
		{
			name:  "literal",
			token: launch.Literal("hello"),
			want:  "hello",
			raw:   "hello",
		},
		{
			name:  "bound variable",
			token: launch.MustParseSubstitutions("say-$(var greeting)"),
			want:  "say-world",
			raw:   "say-world",
		},
		{
			name:    "unbound variable",
			token:   launch.MustParseSubstitutions("say-$(var missing)"),
			raw:     "say-$(var missing)",
			wantErr: true,
		},
		{
			name:  "nil parts are skipped",
			token: launch.Substitutions{launch.Text("a"), nil, launch.Text("b")},
			want:  "ab",
			raw:   "ab",
		},
		{
			name:    "nil part beside a failing one",
			token:   launch.Substitutions{nil, launch.LaunchConfiguration{Name: launch.Literal("missing")}},
			raw:     "$(var missing)",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Resolve(tt.token, lc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrResolution) {
				t.Errorf("Resolve() error does not wrap ErrResolution: %v", err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Resolve() = %q, want %q", got, tt.want)
			}
			raw, _ := ResolveOrRaw(tt.token, lc)
			if raw != tt.raw {
				t.Errorf("ResolveOrRaw() = %q, want %q", raw, tt.raw)
			}
		})
	}
}
