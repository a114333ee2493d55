package gsweb

import "gsapp-backend/internal/model"

// the website has no subject listing, so the dictionary ships with the client
var seedSubjects = []model.Subject{
	{ShortName: "De", LongName: "Deutsch", Color: 0xFF2196F3},
	{ShortName: "Ma", LongName: "Mathe", Color: 0xFFF44336},
	{ShortName: "Mu", LongName: "Musik", Color: 0xFF9E9E9E},
	{ShortName: "Ku", LongName: "Kunst", Color: 0xFF673AB7},
	{ShortName: "Gg", LongName: "Geografie", Color: 0xFF9E9D24},
	{ShortName: "Re", LongName: "Religion", Color: 0xFFFF8F00},
	{ShortName: "Et", LongName: "Ethik", Color: 0xFFFF8F00},
	{ShortName: "MNT", LongName: "MNT", Color: 0xFF4CAF50},
	{ShortName: "En", LongName: "Englisch", Color: 0xFFFF9800},
	{ShortName: "Sp", LongName: "Sport", Color: 0xFF607D8B},
	{ShortName: "SpJ", LongName: "Sport Jungen", Color: 0xFF607D8B},
	{ShortName: "SpM", LongName: "Sport Mädchen", Color: 0xFF607D8B},
	{ShortName: "Bi", LongName: "Biologie", Color: 0xFF4CAF50},
	{ShortName: "Ch", LongName: "Chemie", Color: 0xFFE91E63},
	{ShortName: "Ph", LongName: "Physik", Color: 0xFF009688},
	{ShortName: "Sk", LongName: "Sozialkunde", Color: 0xFF795548},
	{ShortName: "If", LongName: "Informatik", Color: 0xFF03A9F4},
	{ShortName: "WR", LongName: "Wirtschaft/Recht", Color: 0xFFFF5722},
	{ShortName: "Ge", LongName: "Geschichte", Color: 0xFF9C27B0},
	{ShortName: "Fr", LongName: "Französisch", Color: 0xFF558B2F},
	{ShortName: "Ru", LongName: "Russisch", Color: 0xFF558B2F},
	{ShortName: "La", LongName: "Latein", Color: 0xFF558B2F},
	{ShortName: "Gewi", LongName: "Gesellschaftsw.", Color: 0xFF795548},
	{ShortName: "Dg", LongName: "Darstellen/Gestalten", Color: 0xFF795548},
	{ShortName: "Sn", LongName: "Spanisch", Color: 0xFF558B2F},
	// empty cells of the fallback parser keep the raw entity
	{ShortName: "&nbsp;", LongName: "keine Angabe", Color: 0xFF444444},
}

// SeedSubjects returns a copy of the built-in subject dictionary.
func SeedSubjects() []model.Subject {
	out := make([]model.Subject, len(seedSubjects))
	copy(out, seedSubjects)
	return out
}
