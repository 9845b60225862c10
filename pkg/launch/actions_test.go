// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDeclareLaunchArgument(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		decl      *DeclareLaunchArgument
		preset    map[string]string
		wantValue string
		wantErr   error
	}{
		{
			name:      "default binds",
			decl:      &DeclareLaunchArgument{Name: "robot", Default: Literal("r2"), HasDefault: true},
			wantValue: "r2",
		},
		{
			name:      "bound value wins over default",
			decl:      &DeclareLaunchArgument{Name: "robot", Default: Literal("r2"), HasDefault: true},
			preset:    map[string]string{"robot": "c3po"},
			wantValue: "c3po",
		},
		{
			name:      "empty default is a default",
			decl:      &DeclareLaunchArgument{Name: "robot", Default: nil, HasDefault: true},
			wantValue: "",
		},
		{
			name:    "missing required",
			decl:    &DeclareLaunchArgument{Name: "robot", Description: "robot model"},
			wantErr: ErrMissingArgument,
		},
		{
			name:    "invalid choice",
			decl:    &DeclareLaunchArgument{Name: "mode", Default: Literal("fast"), HasDefault: true, Choices: []string{"sim", "real"}},
			wantErr: ErrInvalidChoice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			lc := NewContext()
			for k, v := range tt.preset {
				lc.SetConfiguration(k, v)
			}
			_, err := tt.decl.Visit(lc)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Visit() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Visit() error = %v", err)
			}
			if got, _ := lc.Configuration(tt.decl.Name); got != tt.wantValue {
				t.Errorf("Configuration(%s) = %q, want %q", tt.decl.Name, got, tt.wantValue)
			}
		})
	}
}

func TestMissingArgumentError_Message(t *testing.T) {
	t.Parallel()

	err := &MissingArgumentError{Name: "robot", Description: "robot model"}
	want := "required launch argument 'robot' was not provided (description: 'robot model')"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIncludeLaunchDescription(t *testing.T) {
	t.Parallel()

	included := NewLaunchDescription(
		&DeclareLaunchArgument{Name: "robot"},
		&GroupAction{Actions: []Entity{&DeclareLaunchArgument{Name: "mode", Default: Literal("sim"), HasDefault: true}}},
	)
	loader := func(string) (*LaunchDescription, error) {
		return included, nil
	}

	t.Run("binds arguments before the description", func(t *testing.T) {
		t.Parallel()
		lc := NewContext()
		lc.SetConfiguration("dir", "/ws")
		inc := &IncludeLaunchDescription{
			Path:      MustParseSubstitutions("$(var dir)/robot.launch.xml"),
			Arguments: []Argument{{Name: "robot", Value: Literal("r2")}},
			Loader:    loader,
		}
		children, err := inc.Visit(lc)
		if err != nil {
			t.Fatalf("Visit() error = %v", err)
		}
		if len(children) != 2 {
			t.Fatalf("Visit() returned %d children, want 2", len(children))
		}
		if _, ok := children[0].(*SetLaunchConfiguration); !ok {
			t.Errorf("children[0] = %T, want *SetLaunchConfiguration", children[0])
		}
		if children[1] != included {
			t.Errorf("children[1] is not the loaded description")
		}
	})

	t.Run("missing required argument", func(t *testing.T) {
		t.Parallel()
		inc := &IncludeLaunchDescription{Path: Literal("/x.launch.xml"), Loader: loader}
		_, err := inc.Visit(NewContext())
		var missing *MissingArgumentError
		if !errors.As(err, &missing) || missing.Name != "robot" || missing.Included != "/x.launch.xml" {
			t.Errorf("Visit() error = %v, want missing 'robot' in /x.launch.xml", err)
		}
	})

	t.Run("argument already bound in context", func(t *testing.T) {
		t.Parallel()
		lc := NewContext()
		lc.SetConfiguration("robot", "r2")
		inc := &IncludeLaunchDescription{Path: Literal("/x.launch.xml"), Loader: loader}
		if _, err := inc.Visit(lc); err != nil {
			t.Errorf("Visit() error = %v", err)
		}
	})

	t.Run("conditional declaration is not required", func(t *testing.T) {
		t.Parallel()
		conditional := func(string) (*LaunchDescription, error) {
			return NewLaunchDescription(
				&DeclareLaunchArgument{Name: "use_cam", Default: Literal("false"), HasDefault: true},
				&DeclareLaunchArgument{Name: "cam_id", Condition: IfCondition{Expression: MustParseSubstitutions("$(var use_cam)")}},
			), nil
		}
		inc := &IncludeLaunchDescription{Path: Literal("/x.launch.xml"), Loader: conditional}
		if _, err := inc.Visit(NewContext()); err != nil {
			t.Errorf("Visit() error = %v", err)
		}
	})

	t.Run("declaration inside conditional group is not required", func(t *testing.T) {
		t.Parallel()
		grouped := func(string) (*LaunchDescription, error) {
			return NewLaunchDescription(
				&GroupAction{
					Condition: UnlessCondition{Expression: Literal("true")},
					Actions:   []Entity{&DeclareLaunchArgument{Name: "cam_id"}},
				},
			), nil
		}
		inc := &IncludeLaunchDescription{Path: Literal("/x.launch.xml"), Loader: grouped}
		if _, err := inc.Visit(NewContext()); err != nil {
			t.Errorf("Visit() error = %v", err)
		}
	})

	t.Run("false condition skips loading", func(t *testing.T) {
		t.Parallel()
		failing := func(string) (*LaunchDescription, error) { return nil, errors.New("must not load") }
		inc := &IncludeLaunchDescription{Path: Literal("/x"), Loader: failing, Condition: IfCondition{Expression: Literal("false")}}
		children, err := inc.Visit(NewContext())
		if err != nil || len(children) != 0 {
			t.Errorf("Visit() = %v, %v; want no children and no error", children, err)
		}
	})

	t.Run("no loader", func(t *testing.T) {
		t.Parallel()
		_, err := (&IncludeLaunchDescription{Path: Literal("/x")}).Visit(NewContext())
		if !errors.Is(err, ErrNoLoader) {
			t.Errorf("Visit() error = %v, want ErrNoLoader", err)
		}
	})
}

func TestLaunchDescription_DeclaredArguments(t *testing.T) {
	t.Parallel()

	cond := IfCondition{Expression: Literal("true")}
	desc := NewLaunchDescription(
		&DeclareLaunchArgument{Name: "plain"},
		&DeclareLaunchArgument{Name: "gated", Condition: cond},
		&GroupAction{Actions: []Entity{&DeclareLaunchArgument{Name: "in_group"}}},
		&GroupAction{Condition: cond, Actions: []Entity{&DeclareLaunchArgument{Name: "in_gated_group"}}},
	)

	var got []string
	for _, decl := range desc.DeclaredArguments() {
		got = append(got, decl.Name)
	}
	if diff := cmp.Diff([]string{"plain", "in_group"}, got); diff != "" {
		t.Errorf("DeclaredArguments() mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupAction(t *testing.T) {
	t.Parallel()

	inner := &LogInfo{Message: Literal("hi")}
	tests := []struct {
		name  string
		group *GroupAction
		want  []string
	}{
		{
			name:  "scoped",
			group: &GroupAction{Scoped: true, Actions: []Entity{inner}, Configurations: []Argument{{Name: "a", Value: Literal("1")}}},
			want:  []string{"PushLaunchConfigurations", "SetLaunchConfiguration", "LogInfo", "PopLaunchConfigurations"},
		},
		{
			name:  "unscoped",
			group: &GroupAction{Actions: []Entity{inner}},
			want:  []string{"LogInfo"},
		},
		{
			name:  "false condition",
			group: &GroupAction{Scoped: true, Actions: []Entity{inner}, Condition: UnlessCondition{Expression: Literal("1")}},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			children, err := tt.group.Visit(NewContext())
			if err != nil {
				t.Fatalf("Visit() error = %v", err)
			}
			var got []string
			for _, c := range children {
				got = append(got, c.TypeName())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("children mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConditions(t *testing.T) {
	t.Parallel()

	lc := NewContext()
	lc.SetConfiguration("on", "True")

	tests := []struct {
		name    string
		cond    Condition
		want    bool
		wantErr bool
	}{
		{"if true", IfCondition{Expression: MustParseSubstitutions("$(var on)")}, true, false},
		{"unless true", UnlessCondition{Expression: MustParseSubstitutions("$(var on)")}, false, false},
		{"if zero", IfCondition{Expression: Literal("0")}, false, false},
		{"malformed", IfCondition{Expression: Literal("maybe")}, false, true},
		{"unbound", IfCondition{Expression: MustParseSubstitutions("$(var off)")}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := tt.cond.Evaluate(lc)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Evaluate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCondition) {
				t.Errorf("Evaluate() error does not wrap ErrInvalidCondition: %v", err)
			}
			if got != tt.want {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLogInfo_WritesToContextOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	lc := NewContext(WithOutput(&buf))
	lc.SetConfiguration("who", "world")
	if _, err := (&LogInfo{Message: MustParseSubstitutions("hello $(var who)")}).Visit(lc); err != nil {
		t.Fatalf("Visit() error = %v", err)
	}
	if got := buf.String(); !strings.Contains(got, "hello world") {
		t.Errorf("output = %q, want it to contain %q", got, "hello world")
	}
}

func TestEnvironmentActions(t *testing.T) {
	t.Parallel()

	lc := NewContext(WithEnviron([]string{"KEEP=1", "DROP=1"}))
	if _, err := (&SetEnvironmentVariable{Name: Literal("NEW"), Value: Literal("v")}).Visit(lc); err != nil {
		t.Fatal(err)
	}
	if _, err := (&UnsetEnvironmentVariable{Name: Literal("DROP")}).Visit(lc); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"KEEP=1", "NEW=v"}, lc.Environ()); diff != "" {
		t.Errorf("Environ() mismatch (-want +got):\n%s", diff)
	}
}
