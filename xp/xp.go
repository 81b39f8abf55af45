package xp

import "time"

const DailyCap = 100

const (
	RankDefault  = "Новачок"
	RankTop      = "Легенда"
	RankReseller = "Ресейлер"
	RankAdmin    = "Адміністратор"
)

type Threshold struct {
	XP   int
	Rank string
}

// Пороги рангов по возрастанию XP
var thresholds = []Threshold{
	{0, "Новачок"},
	{50, "Учасник"},
	{150, "Активіст"},
	{300, "Авторитет"},
	{600, "Ветеран"},
	{1000, "Легенда"},
}

// Спецранги назначаются вручную и не пересчитываются по XP
var specialRanks = map[string]bool{
	RankReseller: true,
	RankAdmin:    true,
}

func Thresholds() []Threshold {
	return thresholds
}

func IsSpecialRank(rank string) bool {
	return specialRanks[rank]
}

// RankFor — старший порог, который покрывает набранный XP
func RankFor(xp int) string {
	for i := len(thresholds) - 1; i >= 0; i-- {
		if xp >= thresholds[i].XP {
			return thresholds[i].Rank
		}
	}
	return RankDefault
}

// RecalcRank пересчитывает ранг, не трогая спецранги
func RecalcRank(currentRank string, xp int) string {
	if IsSpecialRank(currentRank) {
		return currentRank
	}
	return RankFor(xp)
}

// NextRank — следующий порог после текущего XP
func NextRank(xp int) (Threshold, bool) {
	for _, t := range thresholds {
		if t.XP > xp {
			return t, true
		}
	}
	return Threshold{}, false
}

// Award — новое состояние счётчиков после одного засчитанного сообщения
type Award struct {
	XP      int
	DailyXP int
	Date    string
	Changed bool
}

// Accrue начисляет 1 XP с дневным лимитом. Новый день (UTC) сбрасывает
// дневной счётчик, при достигнутом лимите состояние не меняется.
func Accrue(curXP, curDaily int, curDate *string, now time.Time) Award {
	today := now.UTC().Format(time.DateOnly)

	if curDate == nil || *curDate != today {
		return Award{XP: curXP + 1, DailyXP: 1, Date: today, Changed: true}
	}
	if curDaily < DailyCap {
		return Award{XP: curXP + 1, DailyXP: curDaily + 1, Date: today, Changed: true}
	}
	return Award{XP: curXP, DailyXP: curDaily, Date: today, Changed: false}
}
