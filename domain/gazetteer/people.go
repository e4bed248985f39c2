package gazetteer

// Person is a gazetteer entry for a biblical person.
type Person struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
	Role    string   `json:"role"`
}

// Order matters: detection reports matches in this order.
var peopleTable = []Person{
	{Name: "Jesus", Aliases: []string{"Jesus Christ", "Christ", "Jesus of Nazareth"}, Role: "Messiah"},
	{Name: "Adam", Role: "First man"},
	{Name: "Eve", Role: "First woman"},
	{Name: "Noah", Role: "Builder of the ark"},
	{Name: "Abraham", Aliases: []string{"Abram"}, Role: "Patriarch"},
	{Name: "Sarah", Aliases: []string{"Sarai"}, Role: "Matriarch"},
	{Name: "Isaac", Role: "Patriarch"},
	{Name: "Rebekah", Aliases: []string{"Rebecca"}, Role: "Matriarch"},
	{Name: "Jacob", Role: "Patriarch"},
	{Name: "Rachel", Role: "Matriarch"},
	{Name: "Leah", Role: "Matriarch"},
	{Name: "Joseph", Role: "Patriarch"},
	{Name: "Moses", Role: "Lawgiver"},
	{Name: "Aaron", Role: "High priest"},
	{Name: "Miriam", Role: "Prophetess"},
	{Name: "Joshua", Role: "Leader of Israel"},
	{Name: "Deborah", Role: "Judge"},
	{Name: "Gideon", Role: "Judge"},
	{Name: "Samson", Role: "Judge"},
	{Name: "Ruth", Role: "Moabite ancestor of David"},
	{Name: "Boaz", Role: "Kinsman redeemer"},
	{Name: "Samuel", Role: "Prophet and judge"},
	{Name: "Saul", Role: "King of Israel"},
	{Name: "David", Aliases: []string{"King David"}, Role: "King of Israel"},
	{Name: "Solomon", Aliases: []string{"King Solomon"}, Role: "King of Israel"},
	{Name: "Elijah", Aliases: []string{"Elias"}, Role: "Prophet"},
	{Name: "Elisha", Role: "Prophet"},
	{Name: "Isaiah", Role: "Prophet"},
	{Name: "Jeremiah", Role: "Prophet"},
	{Name: "Ezekiel", Role: "Prophet"},
	{Name: "Daniel", Role: "Prophet"},
	{Name: "Jonah", Role: "Prophet"},
	{Name: "Esther", Role: "Queen of Persia"},
	{Name: "Nehemiah", Role: "Governor of Judah"},
	{Name: "Ezra", Role: "Scribe"},
	{Name: "Job", Role: "Righteous sufferer"},
	{Name: "Mary", Aliases: []string{"Virgin Mary", "Mary the mother of Jesus"}, Role: "Mother of Jesus"},
	{Name: "Mary Magdalene", Aliases: []string{"Magdalene"}, Role: "Disciple"},
	{Name: "John the Baptist", Aliases: []string{"the Baptist"}, Role: "Prophet"},
	{Name: "Peter", Aliases: []string{"Simon Peter", "Cephas"}, Role: "Apostle"},
	{Name: "Andrew", Role: "Apostle"},
	{Name: "James", Aliases: []string{"James son of Zebedee"}, Role: "Apostle"},
	{Name: "John", Aliases: []string{"John the Apostle", "the beloved disciple"}, Role: "Apostle"},
	{Name: "Matthew", Aliases: []string{"Levi"}, Role: "Apostle"},
	{Name: "Thomas", Aliases: []string{"Didymus"}, Role: "Apostle"},
	{Name: "Judas Iscariot", Aliases: []string{"Judas"}, Role: "Betrayer"},
	{Name: "Mark", Aliases: []string{"John Mark"}, Role: "Gospel writer"},
	{Name: "Luke", Role: "Gospel writer"},
	{Name: "Paul", Aliases: []string{"Saul of Tarsus", "Apostle Paul"}, Role: "Apostle"},
	{Name: "Barnabas", Role: "Missionary"},
	{Name: "Timothy", Role: "Pastor"},
	{Name: "Silas", Role: "Missionary"},
	{Name: "Stephen", Role: "First martyr"},
	{Name: "Lazarus", Role: "Friend of Jesus"},
	{Name: "Martha", Role: "Friend of Jesus"},
	{Name: "Nicodemus", Role: "Pharisee"},
	{Name: "Pontius Pilate", Aliases: []string{"Pilate"}, Role: "Roman governor"},
	{Name: "Herod", Aliases: []string{"King Herod"}, Role: "King of Judea"},
}
