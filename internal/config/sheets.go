package config

type Sheets struct {
	SpreadsheetID string `env:"GOOGLE_SPREADSHEET_ID,required"`
	// SheetGIDs maps categories to sheet tabs, e.g. "EARPHONES:0,DACS:1".
	SheetGIDs map[string]int `env:"SHEET_GIDS" envDefault:"EARPHONES:0"`
}
