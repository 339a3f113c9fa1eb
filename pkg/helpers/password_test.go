package helpers

import "testing"

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret1", "pepper")
	if err != nil {
		t.Fatal(err)
	}
	if hash == "secret1" {
		t.Fatal("password stored in clear")
	}
	if !CompareHashAndPassword(hash, "secret1", "pepper") {
		t.Fatal("matching password rejected")
	}
	if CompareHashAndPassword(hash, "secret2", "pepper") {
		t.Fatal("wrong password accepted")
	}
	if CompareHashAndPassword(hash, "secret1", "salt") {
		t.Fatal("wrong salt accepted")
	}
}
