package mq

import "testing"

func TestIsConnectedOnUninitializedPublisher(t *testing.T) {
	var p Publisher
	if p.IsConnected() {
		t.Error("IsConnected on zero publisher = true, want false")
	}
}
