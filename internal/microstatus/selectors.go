package microstatus

// Portal DOM contract. These change whenever MicroStatus ships a new UI.
const (
	employeeButtonSelector = "#Emp"
	employeeIDSelector     = "#IDEmp"
	passwordSelector       = "#Password"
	loginSubmitSelector    = ".box_loginbut a"

	authCodeSelector       = "#googleAuthCode"
	authCodeSubmitSelector = "#googleAuthCodeSubmit"
	invalidAuthCodeText    = "Invalid google code"

	announcementsSelector = "#announcements"
	dialogSelector        = ".ms-dialog"
	dialogCloseSelector   = ".ms-dialog .ms-dialog-titlebar-close"
	dialogConfirmSelector = ".ms-dialog-buttonset button:first-of-type"

	buttonDisabledClass = "dashboard-button-off"
	buttonInnerSelector = ".dashboard-button-div"
	endShiftConfirmText = "Are you sure you want to End your shift?"

	graphSelector         = "#graphDiv"
	attendanceLogSelector = "#graphDiv table"
)

const (
	DefaultBaseURL        = "https://www.microstatus.com/"
	DefaultStatusEndpoint = "/Dashboard/UpdateStatus"
)
