package feature

import (
	"context"
	"testing"
)

// TestFeastProvider_GetVectors 验证 Feast 在线特征读取。
// 注意：需要连接真实的 Feast 服务器才能运行。
func TestFeastProvider_GetVectors(t *testing.T) {
	t.Skip("需要连接真实的 Feast 服务器才能运行")

	ctx := context.Background()

	p, err := NewFeastProvider("localhost", 6566, "piranha")
	if err != nil {
		t.Fatalf("NewFeastProvider: %v", err)
	}

	vec, err := p.GetUserVector(ctx, 0)
	if err != nil {
		t.Fatalf("GetUserVector: %v", err)
	}
	if len(vec) == 0 {
		t.Error("user vector is empty")
	}

	vec, err = p.GetItemVector(ctx, 0)
	if err != nil {
		t.Fatalf("GetItemVector: %v", err)
	}
	if len(vec) == 0 {
		t.Error("item vector is empty")
	}
}
