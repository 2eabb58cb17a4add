// ABOUTME: Fixed instructions sent to the captioning model
// ABOUTME: One for describing a single frame, one for summarizing a whole case
package core

// RecordPrompt precedes the target frame when describing one record
const RecordPrompt = `You are an expert on scramjet combustors and fluid dynamics.
This is an image of the pressure field inside a scramjet combustor.
Blue represents low pressure and red represents high pressure.
The fuel injector sits at the top of the combustor and has the highest pressure.
Air enters at the left edge of the image and the combustor exit is on the right.
Describe the image in detail, focusing on the pressure distribution and flow features,
and on what they imply for combustion efficiency, using the images and descriptions that follow.`

// CasePrompt is appended after all frames when summarizing a case
const CasePrompt = `You are an expert on scramjet combustors and fluid dynamics.
The images are successive flow fields inside a scramjet combustor from one simulation case, and some have descriptions.
Summarize the case by describing the flow features and how combustion evolves over time, based on the images and descriptions.`

// MaxReferenceCentroids bounds how many annotated centroids accompany a record prompt
const MaxReferenceCentroids = 5
