package pipeline

import "testing"

func TestStage_String(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StagePlace, "place"},
		{StageCategories, "categories"},
		{StageSizes, "sizes"},
		{StageLanguages, "languages"},
		{StageLeadership, "leadership"},
		{StagePins, "pins"},
		{StageDone, "done"},
		{StageFailed, "failed"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.stage.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStage_IsTerminal(t *testing.T) {
	for _, s := range Stages() {
		if s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = true, want false", s)
		}
	}
	for _, s := range []Stage{StageDone, StageFailed} {
		if !s.IsTerminal() {
			t.Errorf("%s.IsTerminal() = false, want true", s)
		}
	}
}

func TestConfig_Defaults(t *testing.T) {
	got := Config{Teams: 5, SizeIterations: 3}.defaults()
	if got.SizeIterations != 3 {
		t.Errorf("SizeIterations = %d, want 3 (explicit value kept)", got.SizeIterations)
	}
	if got.CategoryPasses != DefaultConfig().CategoryPasses {
		t.Errorf("CategoryPasses = %d, want default", got.CategoryPasses)
	}
	if got.Teams != 5 {
		t.Errorf("Teams = %d, want 5", got.Teams)
	}
}
