package rational

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStepDescribe(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want string
	}{
		{
			"combine negative operand",
			Step{Kind: StepCombine, Operands: []Value{MustMake(-1, 2), MustMake(2, 3)}, Operator: Mul, Unreduced: Ratio{-2, 6}},
			"-1/2 × 2/3 = ((-1)·2)/(2·3) = -2/6",
		},
		{
			"division formula",
			Step{Kind: StepCombine, Operands: []Value{MustMake(1, 2), MustMake(3, 4)}, Operator: Div, Unreduced: Ratio{4, 6}},
			"1/2 ÷ 3/4 = (1·4)/(2·3) = 4/6",
		},
		{
			"already reduced",
			Step{Kind: StepSimplify, Unreduced: Ratio{5, 6}, Factor: 1, Result: MustMake(5, 6)},
			"5/6 is in lowest terms",
		},
		{
			"scale",
			Step{Kind: StepScale, Operands: []Value{MustMake(1, 6)}, Factor: 4, Unreduced: Ratio{4, 24}},
			"1/6 × 4/4 = 4/24",
		},
		{
			"parse",
			Step{Kind: StepParse, Text: "0.75", Unreduced: Ratio{75, 100}},
			`read "0.75" as 75/100`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.step.Describe(); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTraceJSON(t *testing.T) {
	res, err := ComputeLCD([]Value{MustMake(1, 2), MustMake(1, 3)})
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{`"lcd":6`, `"inputs":["1/2","1/3"]`, `"kind":"scale"`, `"equivalents":[{"num":3,"den":6},{"num":2,"den":6}]`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON missing %s in %s", want, out)
		}
	}

	empty, err := json.Marshal(Trace{})
	if err != nil || string(empty) != "[]" {
		t.Errorf("empty trace JSON = %s, %v", empty, err)
	}
}

// Results decoded on the far side of a transport describe the same steps.
func TestEvaluationDecode(t *testing.T) {
	eval, err := Evaluate([]Value{MustMake(3, 2), MustMake(1, 4)}, []Operator{Add})
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(eval)
	if err != nil {
		t.Fatal(err)
	}

	var back Evaluation
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !back.Result.Equal(eval.Result) || back.Mixed == nil || back.Mixed.String() != "1 3/4" {
		t.Errorf("decoded result = %s, mixed %v", back.Result, back.Mixed)
	}
	if got, want := strings.Join(back.Trace.Lines(), "\n"), strings.Join(eval.Trace.Lines(), "\n"); got != want {
		t.Errorf("decoded trace:\n%s\nwant:\n%s", got, want)
	}

	var kind StepKind
	if err := kind.UnmarshalText([]byte("teleport")); err == nil {
		t.Error("unknown step kind should fail")
	}
}
