package urls

// Documentation URLs for guides and protocol references
// Project URLs point to the documentation site at https://muurk.github.io/avrkit/

// GettingStarted is the quick start guide for new users
// to get receivers working with the toolkit.
const GettingStarted = "https://muurk.github.io/avrkit/getting-started/overview/"

// AppCommandProtocol documents the AppCommand0300 XML dialect this
// toolkit speaks, as observed on HEOS-era firmware.
const AppCommandProtocol = "https://muurk.github.io/avrkit/protocol/appcommand/"

// HEOSProtocol is the published HEOS CLI protocol specification,
// background for the discovery service type and port conventions.
const HEOSProtocol = "https://rn.dmglobal.com/usmodel/HEOS_CLI_ProtocolSpecification.pdf"

// DenonAVRProject is the denonavr Python project whose protocol
// research this toolkit builds on.
const DenonAVRProject = "https://github.com/ol-iver/denonavr"

// TroubleshootingGuide provides solutions to common issues:
// discovery failures, port differences between model generations,
// and standby behavior.
const TroubleshootingGuide = "https://muurk.github.io/avrkit/troubleshooting/"
