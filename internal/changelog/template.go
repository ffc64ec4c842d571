package changelog

// DefaultTemplate is the formatting guidance handed to the synthesis call
// when the caller supplies none. It is opaque to the pipeline.
const DefaultTemplate = `
### Added
- New visual theme for the user dashboard.
- Ability to export user data to CSV format. (#45)

### Fixed
- Resolved an issue where the login button was unresponsive on mobile devices. (#42)

### Security
- Patched a cross-site scripting (XSS) vulnerability in the search bar.
`
