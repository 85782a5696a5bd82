package dynamo

// DynamoDB attribute names used in update and filter expressions. Using
// constants prevents silent runtime bugs caused by key typos.
const (
	fieldIsRead = "is_read"
	fieldEnable = "enable"
	fieldState  = "state"
)
