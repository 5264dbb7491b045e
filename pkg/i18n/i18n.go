package i18n

type Messages struct {
	AppTitle        string
	Subtitle        string
	AskCount        string
	AskCode         string
	BadCount        string
	EmptyCode       string
	ProxiesLoaded   string
	NoProxies       string
	KeysLoaded      string
	WalletHeader    string
	WalletOK        string
	WalletFailed    string
	Summary         string
	SavedTo         string
	Interrupted     string
	ConfigNotLoaded string
}

func Get(lang string) Messages {
	switch lang {
	case "ru":
		return Messages{
			AppTitle:        "WalletReg",
			Subtitle:        "Создание кошельков и регистрация по реферальному коду",
			AskCount:        "Сколько кошельков создать?",
			AskCode:         "Реферальный код:",
			BadCount:        "Количество кошельков должно быть положительным числом",
			EmptyCode:       "Реферальный код не может быть пустым",
			ProxiesLoaded:   "Загружено прокси: %d\n",
			NoProxies:       "Прокси не найдены, работаем напрямую",
			KeysLoaded:      "Загружено приватных ключей: %d\n",
			WalletHeader:    "Кошелёк %d/%d",
			WalletOK:        "Кошелёк %s зарегистрирован",
			WalletFailed:    "Кошелёк %s не зарегистрирован: %v",
			Summary:         "Готово: всего %d, успешно %d, ошибок %d\n",
			SavedTo:         "Кошельки сохранены в %s\n",
			Interrupted:     "Прервано пользователем",
			ConfigNotLoaded: "Конфиг не загружен",
		}
	default: // "en"
		return Messages{
			AppTitle:        "WalletReg",
			Subtitle:        "Wallet creation and referral registration",
			AskCount:        "How many wallets do you want to create?",
			AskCode:         "Referral code:",
			BadCount:        "Number of wallets must be a positive integer",
			EmptyCode:       "Referral code must not be empty",
			ProxiesLoaded:   "Loaded proxies: %d\n",
			NoProxies:       "No proxies found, running direct",
			KeysLoaded:      "Loaded private keys: %d\n",
			WalletHeader:    "Wallet %d/%d",
			WalletOK:        "Wallet %s registered",
			WalletFailed:    "Wallet %s not registered: %v",
			Summary:         "Done: total %d, registered %d, failed %d\n",
			SavedTo:         "Wallets saved to %s\n",
			Interrupted:     "Interrupted by user",
			ConfigNotLoaded: "Config not loaded",
		}
	}
}
