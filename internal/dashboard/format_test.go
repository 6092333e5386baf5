package dashboard

import "testing"

func TestFormatDate(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "rfc3339", input: "2023-01-15T10:30:00Z", want: "Jan 15, 2023"},
		{name: "fractional seconds", input: "2024-06-01T08:00:00.123Z", want: "Jun 1, 2024"},
		{name: "date only", input: "2022-12-31", want: "Dec 31, 2022"},
		{name: "absent", input: "", want: "—"},
		{name: "garbage", input: "not a date", want: "Invalid Date"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if got := FormatDate(testCase.input); got != testCase.want {
				t.Fatalf("FormatDate(%q) = %q, want %q", testCase.input, got, testCase.want)
			}
		})
	}
}
