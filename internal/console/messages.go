package console

// NoticeMsg is shown in the scrollback as a system line, e.g. after a
// manifest reload.
type NoticeMsg string
