package tmdb

import "testing"

func TestImageURL(t *testing.T) {
	cases := []struct {
		name string
		path string
		size ImageSize
		want string
	}{
		{"poster", "/abc.jpg", SizeW500, "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{"default size", "/abc.jpg", "", "https://image.tmdb.org/t/p/original/abc.jpg"},
		{"unknown size", "/abc.jpg", "w999", "https://image.tmdb.org/t/p/original/abc.jpg"},
		{"tall", "/p.png", SizeH632, "https://image.tmdb.org/t/p/h632/p.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ImageURL(tc.path, tc.size); got != tc.want {
				t.Fatalf("ImageURL = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildImageURLCustomBase(t *testing.T) {
	if got := BuildImageURL("https://cdn.example.com/t/p", "/x.jpg", SizeW92); got != "https://cdn.example.com/t/p/w92/x.jpg" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestClientImageURLUsesConfiguredHost(t *testing.T) {
	client, err := New("key", "", "", WithImageBaseURL("https://img.example.com/"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if got := client.ImageURL("/x.jpg", SizeW185); got != "https://img.example.com/w185/x.jpg" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestParseImageSize(t *testing.T) {
	if got := ParseImageSize(" W342 "); got != SizeW342 {
		t.Fatalf("ParseImageSize = %q", got)
	}
	if got := ParseImageSize("huge"); got != SizeOriginal {
		t.Fatalf("expected original for unknown size, got %q", got)
	}
	if len(ImageSizes()) != len(knownSizes) {
		t.Fatal("ImageSizes and knownSizes disagree")
	}
}
