package main

// Study list configuration constants
const (
	WordsPerPage = 10 // Entries shown per browse page
)

// Difficulty levels for generated sentences
const (
	LevelEasy     = "Easy"
	LevelModerate = "Moderate"
	LevelHard     = "Hard"
)

// Sentence source constants
const (
	SourceDemo  = "demo"
	SourceModel = "model"
)

// Session configuration constants
const (
	SessionCookieName = "session_id"
)

// Route constants
const (
	RouteHome          = "/"
	RouteSearch        = "/search"
	RouteNext          = "/next"
	RouteBack          = "/back"
	RouteSelect        = "/select"
	RouteBrowse        = "/browse"
	RouteGenerate      = "/generate"
	RouteGenerateAgain = "/generate-again"
	RouteReset         = "/reset"
)

// Notice message constants
const (
	NoticeWordNotFound   = "No matching word found."
	NoticeNoActiveLevel  = "Pick a difficulty first, then Generate Again repeats it."
	NoticeGenerationBusy = "A sentence is already being generated for this session."
	NoticeUnknownLevel   = "Unknown difficulty level."
)

// Context key constants
const (
	requestIDKey contextKey = "request_id"
)
