package internal

import "github.com/skillstream/mediacore/model"

// AssetStatusMap maps asset_status_code with the corresponding asset_status.
var AssetStatusMap = map[int32]model.AssetStatus{
	0: model.StatusUploading,
	1: model.StatusProcessing,
	2: model.StatusCompleted,
	3: model.StatusFailed,
}

// AssetStatusCode maps an asset_status back to its numeric code, for
// clients that poll on the code.
func AssetStatusCode(status model.AssetStatus) int32 {
	for code, s := range AssetStatusMap {
		if s == status {
			return code
		}
	}
	return -1
}
