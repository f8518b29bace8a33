// Package domain models the cloud classification catalog and the upload
// contract of the prediction endpoint.
//
// # Cloud Catalog
//
// The catalog holds the eleven cloud types recognised by the WMO genera plus
// contrails. Each record carries the two-letter abbreviation used by the
// training dataset directory layout:
//
//	Ac Altocumulus     As Altostratus     Cc Cirrocumulus
//	Cs Cirrostratus    Ci Cirrus          Cb Cumulonimbus
//	Cu Cumulus         Ns Nimbostratus    Sc Stratocumulus
//	St Stratus         Ct Contrail
//
// The table is built once at package initialization and never modified.
// [CloudTypes] and the lookup functions return copies.
//
// # Upload Validation
//
// [ReadUpload] applies the checks in a fixed order and stops at the first
// failure, so the error message always names the earliest rule violated:
//
//  1. a file must be present and carry a filename
//  2. the content must be readable in full
//  3. the content must not be empty
//  4. the content must not exceed [MaxUploadSize] (10 MiB)
//  5. the declared content type must start with "image/", or the filename
//     extension must be one of [AllowedExtensions]
//
// Every failure is a [*ValidationError] wrapping one of the Err* sentinels.
package domain
