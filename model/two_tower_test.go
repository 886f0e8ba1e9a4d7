package model

import (
	"math"
	"testing"

	"github.com/federico-pizz/piranha2/core"
)

func TestTwoTowerScorer_VectorsNormalized(t *testing.T) {
	s := NewTwoTowerScorer(5, 5, 16)

	userVec, err := s.UserVector(0)
	if err != nil {
		t.Fatalf("UserVector: %v", err)
	}
	itemVec, err := s.ItemVector(0, nil)
	if err != nil {
		t.Fatalf("ItemVector: %v", err)
	}

	for name, vec := range map[string][]float64{"user": userVec, "item": itemVec} {
		var norm float64
		for _, v := range vec {
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if math.Abs(norm-1) > 1e-9 {
			t.Errorf("%s vector norm = %v, want 1", name, norm)
		}
	}
}

func TestTwoTowerScorer_ScoreRange(t *testing.T) {
	s := NewTwoTowerScorer(5, 10, 16)

	for u := 0; u < 5; u++ {
		for i := 0; i < 10; i += 3 {
			score, err := s.Score(u, i, nil)
			if err != nil {
				t.Fatalf("Score(%d,%d): %v", u, i, err)
			}
			if score < 0 || score > 1 {
				t.Errorf("Score(%d,%d) = %v, out of [0,1]", u, i, score)
			}
		}
	}
}

func TestTwoTowerScorer_PrecomputedPathMatchesJoint(t *testing.T) {
	s := NewTwoTowerScorer(5, 5, 16)

	joint, err := s.Score(2, 3, nil)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}

	// 预计算物品向量后走近邻式路径，结果与联合计算一致
	itemVec, err := s.ItemVector(3, nil)
	if err != nil {
		t.Fatalf("ItemVector: %v", err)
	}
	precomputed, err := s.ScoreWithItemVector(2, itemVec)
	if err != nil {
		t.Fatalf("ScoreWithItemVector: %v", err)
	}

	if joint != precomputed {
		t.Errorf("joint = %v, precomputed = %v", joint, precomputed)
	}
}

func TestTwoTowerScorer_Temperature(t *testing.T) {
	sharp := NewTwoTowerScorer(5, 5, 16) // 0.05
	flat := NewTwoTowerScorer(5, 5, 16).WithTemperature(10)

	a, _ := sharp.Score(0, 1, nil)
	b, _ := flat.Score(0, 1, nil)

	// 温度越高分数越接近 0.5
	if math.Abs(b-0.5) > math.Abs(a-0.5) {
		t.Errorf("flat score %v 应比 sharp score %v 更接近 0.5", b, a)
	}
}

func TestTwoTowerScorer_WithContent(t *testing.T) {
	s := NewTwoTowerScorer(5, 5, 8).WithContentDim(12)

	content := make([]float64, 12)
	for i := range content {
		content[i] = 0.1
	}

	withContent, err := s.Score(0, 0, content)
	if err != nil {
		t.Fatalf("Score with content: %v", err)
	}
	withoutContent, err := s.Score(0, 0, nil)
	if err != nil {
		t.Fatalf("Score without content: %v", err)
	}
	if withContent < 0 || withContent > 1 || withoutContent < 0 || withoutContent > 1 {
		t.Errorf("scores out of [0,1]: %v, %v", withContent, withoutContent)
	}
}

func TestTwoTowerScorer_Validation(t *testing.T) {
	s := NewTwoTowerScorer(5, 5, 8)

	if _, err := s.Score(5, 0, nil); !core.IsValidation(err) {
		t.Errorf("user out of range: err = %v, want VALIDATION", err)
	}
	if _, err := s.Score(0, -1, nil); !core.IsValidation(err) {
		t.Errorf("item out of range: err = %v, want VALIDATION", err)
	}
	if _, err := s.Score(0, 0, make([]float64, 12)); !core.IsValidation(err) {
		t.Errorf("content not configured: err = %v, want VALIDATION", err)
	}
	if _, err := s.ScoreWithItemVector(0, make([]float64, 3)); !core.IsDimensionMismatch(err) {
		t.Errorf("wrong item vector dim: err = %v, want DIMENSION_MISMATCH", err)
	}
}

func TestTwoTowerScorer_SetVectors(t *testing.T) {
	s := NewTwoTowerScorer(5, 5, 4)

	before, _ := s.Score(0, 0, nil)
	if err := s.SetItemVector(0, []float64{0.7, -0.2, 0.4, 0.9}); err != nil {
		t.Fatalf("SetItemVector: %v", err)
	}
	after, _ := s.Score(0, 0, nil)
	if before == after {
		t.Error("写入物品隐向量后分数未变化")
	}
}
