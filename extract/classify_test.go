package extract

import "testing"

func TestIsActualQuestion(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "question mark",
			text: "What is the capital of France?",
			want: true,
		},
		{
			name: "question mark beats transaction verb",
			text: "Invested funds are shown where?",
			want: true,
		},
		{
			name: "interrogative opener",
			text: "1. Why does the trial balance fail to detect all errors",
			want: true,
		},
		{
			name: "imperative opener",
			text: "Explain the going concern assumption.",
			want: true,
		},
		{
			name: "imperative opener after marker",
			text: "b) Define depreciation",
			want: true,
		},
		{
			name: "transaction verb opener",
			text: "Invested $5,000 cash in the business.",
			want: false,
		},
		{
			name: "transaction verb opener after marker",
			text: "3. Purchased equipment on account.",
			want: false,
		},
		{
			name: "dollar amount near the start",
			text: "a) $500 was spent on supplies during the month",
			want: false,
		},
		{
			name: "short neutral item",
			text: "a) Journal entries for January",
			want: true,
		},
		{
			name: "short item with transaction cue",
			text: "1. The firm had the following transactions:",
			want: false,
		},
		{
			name: "short item with dollar beyond the head",
			text: "Cash on hand at the end of the reporting period was exactly $90",
			want: false,
		},
		{
			name: "long narrative defaults to scenario",
			text: "The company was incorporated in January and began trading " +
				"shortly afterwards, opening two retail locations and hiring " +
				"twelve employees across both sites.",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsActualQuestion(tt.text); got != tt.want {
				t.Errorf("IsActualQuestion(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsSubItem(t *testing.T) {
	roman := Marker{ID: "iii)", Kind: MarkerRomanNumeral}
	letter := Marker{ID: "a)", Kind: MarkerLowerLetter}

	if !isSubItem(roman, "iii) bonus shares") {
		t.Error("short roman continuation should be a sub-item")
	}
	if isSubItem(roman, "iii) Explain the treatment of bonus shares") {
		t.Error("imperative opener should start its own item")
	}
	if isSubItem(roman, "iii) What happens to retained earnings") {
		t.Error("interrogative opener should start its own item")
	}
	if isSubItem(letter, "a) short continuation") {
		t.Error("lettered markers are never sub-items")
	}

	long := "iii) " + string(make([]byte, 100))
	if isSubItem(roman, long) {
		t.Error("lines of 100+ chars should start their own item")
	}
}
