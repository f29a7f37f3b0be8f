package codingstats

// Achievement is one catalog entry evaluated for a user. Progress and Target
// are nil for entries without a meaningful count.
type Achievement struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Unlocked    bool
	Progress    *int
	Target      *int
}

// Snapshot is the live state achievements are evaluated against.
type Snapshot struct {
	Solved SolvedCounts
	Streak Streak
}

type achievementRule struct {
	id, title, description, icon string
	target                       int
	showProgress                 bool
	metric                       func(Snapshot) int
}

var catalog = []achievementRule{
	{
		id: "first-solve", title: "First Steps", description: "Solve your first problem",
		icon: "footprints", target: 1,
		metric: func(s Snapshot) int { return s.Solved.Total },
	},
	{
		id: "streak-7", title: "Week Warrior", description: "Keep a 7 day submission streak",
		icon: "flame", target: 7, showProgress: true,
		metric: func(s Snapshot) int { return s.Streak.Current },
	},
	{
		id: "streak-30", title: "Monthly Master", description: "Keep a 30 day submission streak",
		icon: "calendar", target: 30, showProgress: true,
		metric: func(s Snapshot) int { return s.Streak.Current },
	},
	{
		id: "easy-master", title: "Easy Master", description: "Solve 50 easy problems",
		icon: "leaf", target: 50, showProgress: true,
		metric: func(s Snapshot) int { return s.Solved.Easy },
	},
	{
		id: "medium-master", title: "Medium Master", description: "Solve 25 medium problems",
		icon: "bolt", target: 25, showProgress: true,
		metric: func(s Snapshot) int { return s.Solved.Medium },
	},
	{
		id: "hard-master", title: "Hard Master", description: "Solve 10 hard problems",
		icon: "crown", target: 10, showProgress: true,
		metric: func(s Snapshot) int { return s.Solved.Hard },
	},
}

// EvaluateAchievements evaluates the whole catalog against s, in catalog order.
// Progress is the raw metric and may exceed Target.
func EvaluateAchievements(s Snapshot) []Achievement {
	out := make([]Achievement, 0, len(catalog))
	for _, rule := range catalog {
		value := rule.metric(s)
		a := Achievement{
			ID:          rule.id,
			Title:       rule.title,
			Description: rule.description,
			Icon:        rule.icon,
			Unlocked:    value >= rule.target,
		}
		if rule.showProgress {
			progress, target := value, rule.target
			a.Progress, a.Target = &progress, &target
		}
		out = append(out, a)
	}
	return out
}

// CountSolved tallies solved problem ids by difficulty. Duplicate ids count once.
func CountSolved(problemIDs []string, difficulties map[string]Difficulty) SolvedCounts {
	var c SolvedCounts
	seen := make(map[string]struct{}, len(problemIDs))
	for _, id := range problemIDs {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		c.Total++
		switch difficulties[id] {
		case Easy:
			c.Easy++
		case Medium:
			c.Medium++
		case Hard:
			c.Hard++
		}
	}
	return c
}
