package gazetteer

// Place is a gazetteer entry for a biblical location.
type Place struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Region  string   `json:"region"`
}

var placesTable = []Place{
	{Name: "Jerusalem", Aliases: []string{"Zion", "City of David"}, Region: "Judea"},
	{Name: "Bethlehem", Region: "Judea"},
	{Name: "Nazareth", Region: "Galilee"},
	{Name: "Galilee", Aliases: []string{"Sea of Galilee"}, Region: "Galilee"},
	{Name: "Capernaum", Region: "Galilee"},
	{Name: "Cana", Region: "Galilee"},
	{Name: "Bethany", Region: "Judea"},
	{Name: "Jericho", Region: "Judea"},
	{Name: "Judea", Aliases: []string{"Judaea", "Judah"}, Region: "Judea"},
	{Name: "Samaria", Region: "Samaria"},
	{Name: "Jordan River", Aliases: []string{"Jordan"}, Region: "Jordan Valley"},
	{Name: "Mount Sinai", Aliases: []string{"Sinai", "Horeb", "Mount Horeb"}, Region: "Sinai Peninsula"},
	{Name: "Mount of Olives", Aliases: []string{"Olivet"}, Region: "Judea"},
	{Name: "Gethsemane", Region: "Judea"},
	{Name: "Golgotha", Aliases: []string{"Calvary"}, Region: "Judea"},
	{Name: "Eden", Aliases: []string{"Garden of Eden"}, Region: "Mesopotamia"},
	{Name: "Egypt", Region: "Africa"},
	{Name: "Babylon", Region: "Mesopotamia"},
	{Name: "Nineveh", Region: "Assyria"},
	{Name: "Canaan", Aliases: []string{"Promised Land"}, Region: "Levant"},
	{Name: "Damascus", Region: "Syria"},
	{Name: "Antioch", Region: "Syria"},
	{Name: "Tarsus", Region: "Cilicia"},
	{Name: "Ephesus", Region: "Asia Minor"},
	{Name: "Corinth", Region: "Greece"},
	{Name: "Athens", Region: "Greece"},
	{Name: "Philippi", Region: "Macedonia"},
	{Name: "Thessalonica", Region: "Macedonia"},
	{Name: "Rome", Region: "Italy"},
	{Name: "Patmos", Region: "Aegean Sea"},
	{Name: "Sodom", Region: "Dead Sea plain"},
	{Name: "Gomorrah", Region: "Dead Sea plain"},
}
