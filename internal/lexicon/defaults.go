package lexicon

import "github.com/hyperjump/tuvan/internal/tagger"

var defaultComponents = []tagger.Category{
	{Name: "cpu", Keywords: []string{
		"cpu", "processor", "intel", "amd", "ryzen", "core i", "i3", "i5", "i7", "i9",
		"threadripper", "xeon", "athlon", "pentium", "celeron", "phenom",
	}},
	{Name: "mainboard", Keywords: []string{
		"mainboard", "motherboard", "mobo", "main", "bo mạch", "bo mạch chủ",
		"asus", "msi", "gigabyte", "asrock",
		"b660", "b760", "z690", "z790", "b550", "x570", "h610", "h770",
	}},
	{Name: "ram", Keywords: []string{
		"ram", "memory", "bộ nhớ", "corsair", "kingston", "g.skill", "crucial",
		"ddr4", "ddr5", "dimm", "mhz", "16gb", "32gb", "8gb",
	}},
	{Name: "gpu", Keywords: []string{
		"gpu", "graphics card", "card màn hình", "vga", "display card",
		"rtx", "gtx", "rx", "nvidia", "amd", "geforce", "radeon",
		"3050", "3060", "3070", "4060", "6600", "6700",
	}},
	{Name: "ssd", Keywords: []string{
		"ssd", "solid state drive", "ổ cứng", "wd", "western digital", "samsung",
		"kingston", "crucial", "nvme", "m.2", "sata", "500gb", "1tb", "2tb",
	}},
	{Name: "hdd", Keywords: []string{
		"hdd", "hard disk", "hard drive", "ổ cứng", "seagate", "toshiba", "wd",
		"western digital", "1tb", "2tb", "4tb", "7200rpm",
	}},
	{Name: "psu", Keywords: []string{
		"psu", "power supply", "nguồn", "corsair", "cooler master", "evga", "seasonic",
		"thermaltake", "fsp", "xigmatek", "deepcool", "antec",
		"550w", "650w", "750w", "850w", "1000w", "gold", "bronze", "platinum",
	}},
	{Name: "case", Keywords: []string{
		"case", "vỏ máy", "vỏ case", "thùng máy", "chassis", "nzxt", "lian li", "corsair",
		"cooler master", "thermaltake", "deepcool", "sama",
	}},
	{Name: "cooling", Keywords: []string{
		"cooling", "cooler", "tản nhiệt", "aio", "water cooling", "liquid cooling",
		"air cooling", "fan", "quạt", "heatsink", "radiator", "noctua", "deepcool",
		"cooler master", "corsair",
	}},
	{Name: "monitor", Keywords: []string{
		"monitor", "màn hình", "display", "lg", "dell", "samsung", "aoc", "asus",
		"viewsonic", "benq", "msi", "gigabyte", "acer", "alienware", "inch",
		"75hz", "144hz", "165hz", "240hz", "fullhd", "qhd", "4k", "hdr", "ips", "va", "tn",
	}},
}

var defaultPurposes = []tagger.Category{
	{Name: "gaming", Keywords: []string{
		"gaming", "game", "chơi game", "esport", "fps", "moba", "battle royale", "lol",
		"liên minh", "pubg", "valorant", "csgo", "counter strike", "dota", "fortnite",
		"rpg", "single player", "multiplayer", "steam", "epic", "gaming pc", "máy chơi game",
	}},
	{Name: "work", Keywords: []string{
		"work", "làm việc", "văn phòng", "office", "excel", "word", "microsoft office",
		"google docs", "word processing", "spreadsheet", "outlook", "email", "zoom",
		"teams", "meet", "remote work", "wfh", "tác vụ văn phòng",
	}},
	{Name: "programming", Keywords: []string{
		"programming", "coding", "development", "lập trình", "code", "developer",
		"software", "web dev", "app dev", "mobile dev", "devops", "ide", "visual studio",
		"vscode", "pycharm", "intellij", "android studio", "xcode", "github", "gitlab",
	}},
	{Name: "graphics", Keywords: []string{
		"graphics", "design", "đồ họa", "thiết kế", "photoshop", "illustrator", "adobe",
		"gimp", "figma", "illustration", "graphic design", "ui", "ux", "indesign",
		"lightroom", "premiere", "after effects", "blender", "rendering", "ray tracing",
	}},
	{Name: "video_editing", Keywords: []string{
		"video", "editing", "biên tập", "chỉnh sửa video", "premiere", "after effects",
		"davinci resolve", "final cut", "sony vegas", "video production", "youtube",
		"livestream", "stream", "obs", "xsplit", "streamlabs", "video creator",
	}},
	{Name: "3d_rendering", Keywords: []string{
		"3d", "rendering", "animation", "blender", "maya", "3ds max", "cinema 4d",
		"autocad", "revit", "sketchup", "3d modeling", "archviz",
		"architectural visualization", "cad", "render",
	}},
	{Name: "streaming", Keywords: []string{
		"streaming", "stream", "broadcast", "obs", "streamlabs", "xsplit", "twitch",
		"youtube live", "facebook live", "streamer", "content creator", "influencer", "live",
	}},
	{Name: "study", Keywords: []string{
		"study", "học tập", "school", "university", "education", "learning", "research",
		"thesis", "assignment", "coursework", "student", "e-learning", "online learning",
		"homework", "essay",
	}},
}

var defaultRequirements = []tagger.Category{
	{Name: "quiet", Keywords: []string{"quiet", "silent", "im lặng", "êm", "không ồn", "không tiếng"}},
	{Name: "rgb", Keywords: []string{"rgb", "led", "lighting", "đèn", "ánh sáng"}},
	{Name: "white", Keywords: []string{"white", "màu trắng", "case trắng", "white build"}},
	{Name: "black", Keywords: []string{"black", "màu đen", "case đen", "black build"}},
	{Name: "small", Keywords: []string{"itx", "small", "nhỏ gọn", "mini", "sff"}},
	{Name: "upgrade", Keywords: []string{"upgrade", "nâng cấp", "mở rộng", "tương lai", "sau này"}},
	{Name: "no_gpu", Keywords: []string{"không card", "không gpu", "onboard", "igpu", "không rời"}},
	{Name: "wifi", Keywords: []string{"wifi", "wireless", "không dây"}},
	{Name: "bluetooth", Keywords: []string{"bluetooth", "bt"}},
	{Name: "hackintosh", Keywords: []string{"hackintosh", "macos", "mac os"}},
	{Name: "overclocking", Keywords: []string{"oc", "overclock", "boost", "ép xung"}},
	{Name: "low_power", Keywords: []string{"tiết kiệm điện", "power saving", "low power", "tdp thấp"}},
}

var defaultBrands = []tagger.Category{
	{Name: "intel", Keywords: []string{"intel", "core i", "pentium", "celeron", "xeon"}},
	{Name: "amd", Keywords: []string{"amd", "ryzen", "threadripper", "athlon", "phenom"}},
	{Name: "nvidia", Keywords: []string{"nvidia", "rtx", "gtx", "geforce"}},
	{Name: "radeon", Keywords: []string{"radeon", "rx", "amd graphics"}},
	{Name: "asus", Keywords: []string{"asus", "rog", "tuf", "prime", "strix"}},
	{Name: "gigabyte", Keywords: []string{"gigabyte", "aorus"}},
	{Name: "msi", Keywords: []string{"msi", "meg", "mpg", "mag"}},
	{Name: "asrock", Keywords: []string{"asrock", "taichi", "phantom gaming"}},
	{Name: "corsair", Keywords: []string{"corsair", "vengeance", "dominator"}},
	{Name: "kingston", Keywords: []string{"kingston", "hyperx", "fury"}},
	{Name: "samsung", Keywords: []string{"samsung", "evo", "pro", "qvo"}},
	{Name: "western_digital", Keywords: []string{"western digital", "wd", "blue", "black", "green"}},
	{Name: "seagate", Keywords: []string{"seagate", "barracuda", "firecuda"}},
	{Name: "gskill", Keywords: []string{"g.skill", "trident", "ripjaws"}},
	{Name: "crucial", Keywords: []string{"crucial", "ballistix", "mx"}},
	{Name: "nzxt", Keywords: []string{"nzxt", "h510", "h710", "kraken"}},
	{Name: "cooler_master", Keywords: []string{"cooler master", "cm", "masterbox", "hyper"}},
	{Name: "thermaltake", Keywords: []string{"thermaltake", "view", "core", "versa"}},
	{Name: "lian_li", Keywords: []string{"lian li", "lancool", "o11", "dynamic"}},
	{Name: "deepcool", Keywords: []string{"deepcool", "matrexx", "gammaxx"}},
	{Name: "seasonic", Keywords: []string{"seasonic", "focus", "prime"}},
	{Name: "evga", Keywords: []string{"evga", "supernova", "g2", "g3", "p2"}},
	{Name: "noctua", Keywords: []string{"noctua", "nh-d15", "nh-u12", "nh-l9"}},
	{Name: "arctic", Keywords: []string{"arctic", "freezer", "mx", "liquid"}},
	{Name: "logitech", Keywords: []string{"logitech", "g502", "g305", "g pro", "gpro"}},
	{Name: "steelseries", Keywords: []string{"steelseries", "rival", "sensei", "apex"}},
	{Name: "razer", Keywords: []string{"razer", "deathadder", "viper", "blackwidow", "huntsman"}},
	{Name: "hyperx", Keywords: []string{"hyperx", "alloy", "cloud"}},
	{Name: "be_quiet", Keywords: []string{"be quiet", "dark rock", "pure rock", "silent wings"}},
	{Name: "phanteks", Keywords: []string{"phanteks", "p500", "p400", "enthoo"}},
}
