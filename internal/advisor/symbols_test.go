package advisor

import (
	"reflect"
	"testing"
)

func TestExtractSymbolsSingleMention(t *testing.T) {
	got := ExtractSymbols("What about SOL?")
	if len(got) != 1 || got[0] != "SOL" {
		t.Fatalf("expected [SOL], got %v", got)
	}
}

func TestExtractSymbolsMultipleMentions(t *testing.T) {
	got := ExtractSymbols("Compare BTC and ETH, then BTC again")
	if !reflect.DeepEqual(got, []string{"BTC", "ETH"}) {
		t.Fatalf("expected [BTC ETH], got %v", got)
	}
}

func TestExtractSymbolsNoMention(t *testing.T) {
	got := ExtractSymbols("What looks good right now?")
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestExtractSymbolsCaseInsensitive(t *testing.T) {
	got := ExtractSymbols("how's sol doing?")
	if len(got) != 1 || got[0] != "SOL" {
		t.Fatalf("expected [SOL], got %v", got)
	}
}

func TestExtractSymbolsByAssetSlug(t *testing.T) {
	got := ExtractSymbols("is bitcoin or ripple better")
	if !reflect.DeepEqual(got, []string{"BTC", "XRP"}) {
		t.Fatalf("expected [BTC XRP], got %v", got)
	}
}
