package build

import (
	"testing"

	"buildtrack"
)

func TestDecodeStepURLs_Empty(t *testing.T) {
	for _, in := range []string{"", "[]"} {
		urls, err := DecodeStepURLs(in)
		if err != nil {
			t.Fatalf("DecodeStepURLs(%q) error = %v", in, err)
		}
		if len(urls) != 0 {
			t.Fatalf("DecodeStepURLs(%q) = %v, want empty", in, urls)
		}
	}
}

func TestDecodeStepURLs_Malformed(t *testing.T) {
	if _, err := DecodeStepURLs("{not json"); err == nil {
		t.Fatal("DecodeStepURLs on malformed input expected error")
	}
}

func TestEncodeStepURLs_Empty(t *testing.T) {
	encoded, err := EncodeStepURLs(nil)
	if err != nil {
		t.Fatalf("EncodeStepURLs(nil) error = %v", err)
	}
	if encoded != EmptyURLs {
		t.Fatalf("EncodeStepURLs(nil) = %q, want %q", encoded, EmptyURLs)
	}
}

func TestAppendStepURL_PreservesOrder(t *testing.T) {
	encoded := EmptyURLs
	var changed bool
	var err error

	for _, u := range []buildtrack.StepURL{
		{Name: "stdio", URL: "http://logs/1"},
		{Name: "warnings", URL: "http://logs/2"},
		{Name: "stdio", URL: "http://logs/3"},
	} {
		encoded, changed, err = AppendStepURL(encoded, u.Name, u.URL)
		if err != nil {
			t.Fatalf("AppendStepURL(%q) error = %v", u.Name, err)
		}
		if !changed {
			t.Fatalf("AppendStepURL(%q) reported no change", u.Name)
		}
	}

	urls, err := DecodeStepURLs(encoded)
	if err != nil {
		t.Fatalf("DecodeStepURLs() error = %v", err)
	}
	want := []buildtrack.StepURL{
		{Name: "stdio", URL: "http://logs/1"},
		{Name: "warnings", URL: "http://logs/2"},
		{Name: "stdio", URL: "http://logs/3"},
	}
	if len(urls) != len(want) {
		t.Fatalf("decoded %d urls, want %d", len(urls), len(want))
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Errorf("urls[%d] = %+v, want %+v", i, urls[i], want[i])
		}
	}
}

func TestAppendStepURL_DedupsExactPair(t *testing.T) {
	encoded, changed, err := AppendStepURL(EmptyURLs, "stdio", "http://logs/1")
	if err != nil || !changed {
		t.Fatalf("first append changed=%v err=%v", changed, err)
	}

	same, changed, err := AppendStepURL(encoded, "stdio", "http://logs/1")
	if err != nil {
		t.Fatalf("duplicate append error = %v", err)
	}
	if changed {
		t.Fatal("duplicate pair reported as a change")
	}
	if same != encoded {
		t.Fatalf("duplicate append altered encoding: %q != %q", same, encoded)
	}

	// Same name with a different target is a distinct link.
	_, changed, err = AppendStepURL(encoded, "stdio", "http://logs/2")
	if err != nil {
		t.Fatalf("append with new url error = %v", err)
	}
	if !changed {
		t.Fatal("same name, different url should append")
	}
}

func FuzzAppendStepURL(f *testing.F) {
	f.Add("", "stdio", "http://logs/1")
	f.Add("[]", "", "")
	f.Add(`[{"name":"a","url":"b"}]`, "a", "b")
	f.Add(`[{"name":"a","url":"b"}]`, "a", "c")

	f.Fuzz(func(t *testing.T, encoded, name, url string) {
		out, changed, err := AppendStepURL(encoded, name, url)
		if err != nil {
			return
		}

		urls, err := DecodeStepURLs(out)
		if err != nil {
			t.Fatalf("append produced undecodable output %q: %v", out, err)
		}

		// The appended pair is present afterwards. Hostile input may
		// already hold duplicates, so presence is all we can claim.
		found := false
		for _, u := range urls {
			if u.Name == name && u.URL == url {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("pair {%q,%q} missing after append", name, url)
		}

		// Appending again never changes the list.
		again, changed2, err := AppendStepURL(out, name, url)
		if err != nil {
			t.Fatalf("second append failed: %v", err)
		}
		if changed2 {
			t.Error("second append of same pair reported a change")
		}
		if again != out {
			t.Errorf("second append altered encoding: %q != %q", again, out)
		}
		_ = changed
	})
}
