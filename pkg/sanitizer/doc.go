// Package sanitizer normalizes user and OTA input before validation and
// storage.
//
// All functions are idempotent and never return errors: input that cannot be
// normalized comes back empty and is left for the validator to reject.
//
// Normalization includes:
//   - Phone numbers: E.164, local numbers read in the hotel's region
//   - Names and room type keys: trimmed, inner whitespace collapsed
//   - Room numbers: trimmed, upper-cased, inner spaces removed ("b 12" becomes "B12")
//   - Slices: duplicates and empty values dropped after normalization
package sanitizer
