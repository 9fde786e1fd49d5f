package model

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestClassRecordUnmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ClassRecord
	}{
		{
			name: "full record",
			in:   `{"title":"Yoga","start_date":"09:00","end_date":"10:00","online":true,"room":{"title":"Hall A"},"employee":{"name":"Jane"}}`,
			want: ClassRecord{
				Title:     Some("Yoga"),
				StartDate: Some("09:00"),
				EndDate:   Some("10:00"),
				Online:    true,
				Room:      Some("Hall A"),
				Employee:  Some("Jane"),
			},
		},
		{
			name: "empty object",
			in:   `{}`,
			want: ClassRecord{},
		},
		{
			name: "not an object",
			in:   `42`,
			want: ClassRecord{},
		},
		{
			name: "null fields and wrong nested shapes",
			in:   `{"title":null,"start_date":"","room":"Hall B","employee":[1],"canceled":null}`,
			want: ClassRecord{},
		},
		{
			name: "numeric title and loose flags",
			in:   `{"title":101,"canceled":1,"online":"yes"}`,
			want: ClassRecord{Title: Some("101"), Canceled: true, Online: true},
		},
		{
			name: "falsy flags",
			in:   `{"canceled":0,"online":""}`,
			want: ClassRecord{},
		},
		{
			name: "object and array scalars are absent",
			in:   `{"title":{"ru":"Йога"},"start_date":["09:00"],"end_date":false}`,
			want: ClassRecord{},
		},
		{
			name: "nested object missing field",
			in:   `{"room":{"id":7},"employee":{"name":"Ann"}}`,
			want: ClassRecord{Employee: Some("Ann")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ClassRecord
			if err := json.Unmarshal([]byte(tt.in), &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestUnmarshalArrayKeepsOrder(t *testing.T) {
	var got []ClassRecord
	in := `[{"title":"B"},"junk",{"title":"A"}]`
	if err := json.Unmarshal([]byte(in), &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Title.Or("") != "B" || got[1].Title.Valid || got[2].Title.Or("") != "A" {
		t.Errorf("unexpected order or content: %+v", got)
	}
}

func TestTextOr(t *testing.T) {
	if got := (Text{}).Or("?"); got != "?" {
		t.Errorf("absent Or = %q", got)
	}
	if got := Some("").Or("?"); got != "?" {
		t.Errorf("empty Or = %q", got)
	}
	if got := Some("x").Or("?"); got != "x" {
		t.Errorf("present Or = %q", got)
	}
}
