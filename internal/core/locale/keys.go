package locale

// Message keys shared by every catalog.
const (
	KeyAppTitle                 = "appTitle"
	KeyInputPlaceholder         = "inputPlaceholder"
	KeyPlaceholder              = "placeholder"
	KeyRenderButton             = "renderButton"
	KeyClearButton              = "clearButton"
	KeyUploadButton             = "uploadButton"
	KeyLayoutLabel              = "layoutLabel"
	KeySideBySide               = "sideBySide"
	KeyLineByLine               = "lineByLine"
	KeyLanguageLabel            = "languageLabel"
	KeySelectLanguage           = "selectLanguage"
	KeyDropHint                 = "dropHint"
	KeyErrorRender              = "errorRender"
	KeyErrorFileRead            = "errorFileRead"
	KeyErrorUnsupportedFile     = "errorUnsupportedFile"
	KeyErrorRendererUnavailable = "errorRendererUnavailable"
	KeyViewed                   = "viewed"
	KeyNotViewed                = "notViewed"
	KeyFilesSummary             = "filesSummary"
	KeyFileListTitle            = "fileListTitle"
	KeyEmptyDiff                = "emptyDiff"
	KeyBinaryFile               = "binaryFile"
	KeyRenamedFrom              = "renamedFrom"
	KeyWatching                 = "watching"
	KeyHelpTitle                = "helpTitle"
	KeyPickerTitle              = "pickerTitle"
	KeyFocusInput               = "focusInput"
	KeyFocusResults             = "focusResults"
	KeyHelpQuit                 = "helpQuit"
	KeyHelpFocus                = "helpFocus"
	KeyHelpScroll               = "helpScroll"
	KeyHelpNextFile             = "helpNextFile"
	KeyHelpPrevFile             = "helpPrevFile"
	KeyHelpToggleViewed         = "helpToggleViewed"
	KeyHelpCollapse             = "helpCollapse"
	KeyHelpToggleLayout         = "helpToggleLayout"
	KeyHelpClose                = "helpClose"
	KeyReloaded                 = "reloaded"
)
