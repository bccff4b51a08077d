package server

// Данный сервер просто объединяет специфичные HTTP сервера, отвечающие за обработку конкретных сущностей
type Server struct {
	DealsServer
	SettingsServer
}

func NewServer(
	dealsServer DealsServer,
	settingsServer SettingsServer,
) Server {
	return Server{
		DealsServer:    dealsServer,
		SettingsServer: settingsServer,
	}
}
