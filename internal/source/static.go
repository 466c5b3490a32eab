package source

// Static is an API backed by fixed values, it is what tests and offline
// runs use in place of the scraper.
type Static struct {
	Online    bool
	Players   []Player
	Money     int64
	Value     int64
	Transfers []Transfer
}

// Offline returns a source that reports it could not connect.
func Offline() Static {
	return Static{}
}

func (s Static) Connected() bool {
	return s.Online
}

func (s Static) Roster() []Player {
	return s.Players
}

func (s Static) Cash() int64 {
	return s.Money
}

func (s Static) TeamValue() int64 {
	return s.Value
}

func (s Static) TodayTransfers() []Transfer {
	return s.Transfers
}
