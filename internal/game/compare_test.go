package game

import "testing"

func TestCompare(t *testing.T) {
	tests := []struct {
		name     string
		player   StatValue
		computer StatValue
		stat     StatName
		want     Outcome
		msg      string
	}{
		{"higher runs wins", Number(500), Number(400), StatRuns, OutcomePlayer, MsgPlayerWinsRound},
		{"lower runs loses", Number(399), Number(400), StatRuns, OutcomeComputer, MsgComputerWinsRound},
		{"lower bowling average wins", Number(21.6), Number(25.4), StatBowlingAverage, OutcomePlayer, MsgPlayerWinsRound},
		{"higher bowling average loses", Number(30), Number(22.7), StatBowlingAverage, OutcomeComputer, MsgComputerWinsRound},
		{"equal values draw", Number(51), Number(51), StatCenturies, OutcomeDraw, MsgDraw},
		{"both absent draw", Absent(), Absent(), StatSixes, OutcomeDraw, MsgNeitherHasStat},
		{"player absent loses", Absent(), Number(0), StatWickets, OutcomeComputer, MsgPlayerLacksStat},
		{"computer absent loses", Number(0), Absent(), StatWickets, OutcomePlayer, MsgComputerLacksStat},
		// A missing bowling average must not win by being "lower".
		{"absent bowling average loses", Absent(), Number(99), StatBowlingAverage, OutcomeComputer, MsgPlayerLacksStat},
		{"unparseable counts as absent", ParseStat("-"), Number(3), StatFiveWickets, OutcomeComputer, MsgPlayerLacksStat},
		{"raw star value", ParseStat("248*"), ParseStat("200*"), StatHighestScore, OutcomePlayer, MsgPlayerWinsRound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.player, tt.computer, tt.stat)
			if got.Outcome != tt.want || got.Message != tt.msg {
				t.Errorf("Compare = %s %q, want %s %q", got.Outcome, got.Message, tt.want, tt.msg)
			}
		})
	}
}

func TestCompareSymmetry(t *testing.T) {
	values := []StatValue{Absent(), Number(0), Number(1.5), Number(22.3), Number(22.3), Number(15921)}
	for _, stat := range StatNames {
		for _, a := range values {
			for _, b := range values {
				ab := Compare(a, b, stat).Outcome
				ba := Compare(b, a, stat).Outcome
				if ab != ba.Invert() {
					t.Errorf("%s: Compare(%v,%v)=%s but Compare(%v,%v)=%s", stat, a, b, ab, b, a, ba)
				}
			}
		}
	}
}

func TestParseStat(t *testing.T) {
	tests := []struct {
		raw     string
		value   float64
		present bool
	}{
		{"248*", 248, true},
		{"53.78", 53.78, true},
		{"15,921", 15921, true},
		{"0", 0, true},
		{"", 0, false},
		{"-", 0, false},
		{"n/a", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tt := range tests {
		v := ParseStat(tt.raw)
		if v.Present != tt.present || v.Value != tt.value {
			t.Errorf("ParseStat(%q) = %+v, want value %v present %v", tt.raw, v, tt.value, tt.present)
		}
		if v.Raw != tt.raw {
			t.Errorf("ParseStat(%q) lost raw text: %q", tt.raw, v.Raw)
		}
	}
	if got := ParseStat("-").Comparable(); got != NoValue {
		t.Errorf("absent Comparable = %v, want %v", got, NoValue)
	}
}
